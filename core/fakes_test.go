package core

import (
	"io"
	"net/url"

	"github.com/sideloadhq/depot/contracts"
)

type FakeDownloader struct {
	Content   []byte
	ChunkSize int
	Size      int64 // reported content length; 0 means len(Content)
	Error     error
	ReadError error
	FailAfter int // bytes delivered before ReadError fires
	Calls     int
	OnChunk   func(index int)
}

func (this *FakeDownloader) Download(address url.URL) (io.ReadCloser, int64, error) {
	this.Calls++
	if this.Error != nil {
		return nil, 0, this.Error
	}
	size := this.Size
	if size == 0 {
		size = int64(len(this.Content))
	}
	return &fakeBody{
		content:   this.Content,
		chunk:     this.ChunkSize,
		readError: this.ReadError,
		failAfter: this.FailAfter,
		onChunk:   this.OnChunk,
	}, size, nil
}

type fakeBody struct {
	content   []byte
	offset    int
	chunk     int
	index     int
	readError error
	failAfter int
	onChunk   func(int)
}

func (this *fakeBody) Read(buffer []byte) (int, error) {
	if this.readError != nil && this.offset >= this.failAfter {
		return 0, this.readError
	}
	if this.offset >= len(this.content) {
		return 0, io.EOF
	}
	this.index++
	if this.onChunk != nil {
		this.onChunk(this.index)
	}
	count := this.chunk
	if count <= 0 || count > len(buffer) {
		count = len(buffer)
	}
	if remaining := len(this.content) - this.offset; count > remaining {
		count = remaining
	}
	copy(buffer, this.content[this.offset:this.offset+count])
	this.offset += count
	return count, nil
}

func (this *fakeBody) Close() error { return nil }

////////////////////////////////////////

type sessionWrite struct {
	Handle contracts.SessionHandle
	Name   string
	Size   int64
	Bytes  []byte
}

type FakeInstaller struct {
	HasPermission bool

	DirectError error
	CreateError error
	WriteError  error
	CommitError error

	CommitOutcome contracts.InstallOutcome
	DeliverTwice  bool

	DirectCalls        []string
	Sessions           []contracts.SessionHandle
	Writes             []sessionWrite
	CommitCalls        int
	PermissionRequests int

	nextSession int
}

func NewFakeInstaller() *FakeInstaller {
	return &FakeInstaller{
		HasPermission: true,
		CommitOutcome: contracts.InstallOutcome{Status: contracts.OutcomeSuccess},
	}
}

func (this *FakeInstaller) InstallDirect(localPath string) error {
	this.DirectCalls = append(this.DirectCalls, localPath)
	return this.DirectError
}

func (this *FakeInstaller) CreateSession() (contracts.SessionHandle, error) {
	if this.CreateError != nil {
		return "", this.CreateError
	}
	this.nextSession++
	handle := contracts.SessionHandle(string(rune('0' + this.nextSession)))
	this.Sessions = append(this.Sessions, handle)
	return handle, nil
}

func (this *FakeInstaller) WriteToSession(handle contracts.SessionHandle, name string, size int64, source io.Reader) error {
	if this.WriteError != nil {
		return this.WriteError
	}
	raw, err := io.ReadAll(source)
	if err != nil {
		return err
	}
	this.Writes = append(this.Writes, sessionWrite{Handle: handle, Name: name, Size: size, Bytes: raw})
	return nil
}

func (this *FakeInstaller) CommitSession(handle contracts.SessionHandle, callback func(contracts.InstallOutcome)) error {
	this.CommitCalls++
	if this.CommitError != nil {
		return this.CommitError
	}
	callback(this.CommitOutcome)
	if this.DeliverTwice {
		callback(this.CommitOutcome)
	}
	return nil
}

func (this *FakeInstaller) HasInstallPermission() bool { return this.HasPermission }

func (this *FakeInstaller) RequestInstallPermission() error {
	this.PermissionRequests++
	return nil
}

////////////////////////////////////////

type FakeRecordStore struct {
	Record contracts.PendingInstallRecord
	Found  bool

	SaveError  error
	LoadError  error
	ClearError error

	Saved   []contracts.PendingInstallRecord
	Cleared int
}

func (this *FakeRecordStore) Save(record contracts.PendingInstallRecord) error {
	if this.SaveError != nil {
		return this.SaveError
	}
	this.Record = record
	this.Found = true
	this.Saved = append(this.Saved, record)
	return nil
}

func (this *FakeRecordStore) Load() (contracts.PendingInstallRecord, bool, error) {
	if this.LoadError != nil {
		return contracts.PendingInstallRecord{}, false, this.LoadError
	}
	return this.Record, this.Found, nil
}

func (this *FakeRecordStore) Clear() error {
	if this.ClearError != nil {
		return this.ClearError
	}
	this.Record = contracts.PendingInstallRecord{}
	this.Found = false
	this.Cleared++
	return nil
}
