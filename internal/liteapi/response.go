package liteapi

import (
	"fmt"

	"github.com/tonwire/tonwire/internal/tl"
)

// Response constructor ids, written little-endian on the wire.
const (
	idMasterchainInfo        uint32 = 0x85832881
	idMasterchainInfoExt     uint32 = 0xa8cce0f5
	idCurrentTime            uint32 = 0xe953000d
	idVersion                uint32 = 0x5a0491e5
	idBlockData              uint32 = 0xa574ed6c
	idBlockState             uint32 = 0xabaddc0c
	idBlockHeader            uint32 = 0x752d8219
	idSendMsgStatus          uint32 = 0x3950e597
	idAccountState           uint32 = 0x7079c751
	idRunMethodResult        uint32 = 0xa39a616b
	idShardInfo              uint32 = 0x9fe6cd84
	idAllShardsInfo          uint32 = 0x098fe72d
	idTransactionInfo        uint32 = 0x0edeed47
	idTransactionList        uint32 = 0x6f26c60b
	idTransactionId          uint32 = 0xb12f65af
	idBlockTransactions      uint32 = 0xbd8cad2b
	idPartialBlockProof      uint32 = 0x8ed0d2c1
	idConfigInfo             uint32 = 0xae7b272f
	idValidatorStats         uint32 = 0xb9f796d8
	idLibraryResult          uint32 = 0x117ab96b
	idLibraryResultWithProof uint32 = 0x10a927bf
	idError                  uint32 = 0xbba9e148
)

// Response is one of the boxed lite-server response variants. An Error
// response is admissible in place of any expected positive response.
type Response interface {
	tl.Marshaler
	isResponse()
}

// MasterchainInfo is the answer to GetMasterchainInfo.
type MasterchainInfo struct {
	Last          BlockIdExt
	StateRootHash Int256
	Init          ZeroStateIdExt
}

func (MasterchainInfo) isResponse() {}

func (m MasterchainInfo) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idMasterchainInfo)
	m.Last.MarshalTL(w)
	m.StateRootHash.MarshalTL(w)
	m.Init.MarshalTL(w)
}

func (m *MasterchainInfo) readFields(r *tl.Reader) error {
	if err := m.Last.UnmarshalTL(r); err != nil {
		return err
	}
	if err := m.StateRootHash.UnmarshalTL(r); err != nil {
		return err
	}
	return m.Init.UnmarshalTL(r)
}

// MasterchainInfoExt is the answer to GetMasterchainInfoExt.
type MasterchainInfoExt struct {
	Version       uint32
	Capabilities  uint64
	Last          BlockIdExt
	LastUtime     uint32
	Now           uint32
	StateRootHash Int256
	Init          ZeroStateIdExt
}

func (MasterchainInfoExt) isResponse() {}

func (m MasterchainInfoExt) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idMasterchainInfoExt)
	w.WriteUint32(0) // mode, no optional fields defined
	w.WriteUint32(m.Version)
	w.WriteUint64(m.Capabilities)
	m.Last.MarshalTL(w)
	w.WriteUint32(m.LastUtime)
	w.WriteUint32(m.Now)
	m.StateRootHash.MarshalTL(w)
	m.Init.MarshalTL(w)
}

func (m *MasterchainInfoExt) readFields(r *tl.Reader) error {
	if _, err := r.ReadUint32(); err != nil {
		return err
	}
	var err error
	if m.Version, err = r.ReadUint32(); err != nil {
		return err
	}
	if m.Capabilities, err = r.ReadUint64(); err != nil {
		return err
	}
	if err = m.Last.UnmarshalTL(r); err != nil {
		return err
	}
	if m.LastUtime, err = r.ReadUint32(); err != nil {
		return err
	}
	if m.Now, err = r.ReadUint32(); err != nil {
		return err
	}
	if err = m.StateRootHash.UnmarshalTL(r); err != nil {
		return err
	}
	return m.Init.UnmarshalTL(r)
}

// CurrentTime is the answer to GetTime.
type CurrentTime struct {
	Now uint32
}

func (CurrentTime) isResponse() {}

func (c CurrentTime) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idCurrentTime)
	w.WriteUint32(c.Now)
}

func (c *CurrentTime) readFields(r *tl.Reader) error {
	var err error
	c.Now, err = r.ReadUint32()
	return err
}

// Version is the answer to GetVersion.
type Version struct {
	Mode         uint32
	Version      uint32
	Capabilities uint64
	Now          uint32
}

func (Version) isResponse() {}

func (v Version) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idVersion)
	w.WriteUint32(v.Mode)
	w.WriteUint32(v.Version)
	w.WriteUint64(v.Capabilities)
	w.WriteUint32(v.Now)
}

func (v *Version) readFields(r *tl.Reader) error {
	var err error
	if v.Mode, err = r.ReadUint32(); err != nil {
		return err
	}
	if v.Version, err = r.ReadUint32(); err != nil {
		return err
	}
	if v.Capabilities, err = r.ReadUint64(); err != nil {
		return err
	}
	v.Now, err = r.ReadUint32()
	return err
}

// BlockData is the answer to GetBlock; Data is an opaque serialized block.
type BlockData struct {
	Id   BlockIdExt
	Data []byte
}

func (BlockData) isResponse() {}

func (b BlockData) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idBlockData)
	b.Id.MarshalTL(w)
	w.WriteBytes(b.Data)
}

func (b *BlockData) readFields(r *tl.Reader) error {
	if err := b.Id.UnmarshalTL(r); err != nil {
		return err
	}
	var err error
	b.Data, err = r.ReadBytes()
	return err
}

// BlockState is the answer to GetState.
type BlockState struct {
	Id       BlockIdExt
	RootHash Int256
	FileHash Int256
	Data     []byte
}

func (BlockState) isResponse() {}

func (b BlockState) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idBlockState)
	b.Id.MarshalTL(w)
	b.RootHash.MarshalTL(w)
	b.FileHash.MarshalTL(w)
	w.WriteBytes(b.Data)
}

func (b *BlockState) readFields(r *tl.Reader) error {
	if err := b.Id.UnmarshalTL(r); err != nil {
		return err
	}
	if err := b.RootHash.UnmarshalTL(r); err != nil {
		return err
	}
	if err := b.FileHash.UnmarshalTL(r); err != nil {
		return err
	}
	var err error
	b.Data, err = r.ReadBytes()
	return err
}

// BlockHeader is the answer to GetBlockHeader and LookupBlock. The With*
// fields mirror the request mode bits and gate nothing beyond their own
// presence flags.
type BlockHeader struct {
	Id                    BlockIdExt
	WithStateUpdate       bool // mode.0
	WithValueFlow         bool // mode.1
	WithExtra             bool // mode.4
	WithShardHashes       bool // mode.5
	WithPrevBlkSignatures bool // mode.6
	HeaderProof           []byte
}

func (BlockHeader) isResponse() {}

func (b BlockHeader) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idBlockHeader)
	b.Id.MarshalTL(w)
	var mode uint32
	if b.WithStateUpdate {
		mode |= 1 << 0
	}
	if b.WithValueFlow {
		mode |= 1 << 1
	}
	if b.WithExtra {
		mode |= 1 << 4
	}
	if b.WithShardHashes {
		mode |= 1 << 5
	}
	if b.WithPrevBlkSignatures {
		mode |= 1 << 6
	}
	w.WriteUint32(mode)
	w.WriteBytes(b.HeaderProof)
}

func (b *BlockHeader) readFields(r *tl.Reader) error {
	if err := b.Id.UnmarshalTL(r); err != nil {
		return err
	}
	mode, err := r.ReadUint32()
	if err != nil {
		return err
	}
	b.WithStateUpdate = mode&(1<<0) != 0
	b.WithValueFlow = mode&(1<<1) != 0
	b.WithExtra = mode&(1<<4) != 0
	b.WithShardHashes = mode&(1<<5) != 0
	b.WithPrevBlkSignatures = mode&(1<<6) != 0
	b.HeaderProof, err = r.ReadBytes()
	return err
}

// SendMsgStatus is the answer to SendMessage.
type SendMsgStatus struct {
	Status uint32
}

func (SendMsgStatus) isResponse() {}

func (s SendMsgStatus) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idSendMsgStatus)
	w.WriteUint32(s.Status)
}

func (s *SendMsgStatus) readFields(r *tl.Reader) error {
	var err error
	s.Status, err = r.ReadUint32()
	return err
}

// AccountState is the answer to GetAccountState.
type AccountState struct {
	Id         BlockIdExt
	Shardblk   BlockIdExt
	ShardProof []byte
	Proof      []byte
	State      []byte
}

func (AccountState) isResponse() {}

func (a AccountState) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idAccountState)
	a.Id.MarshalTL(w)
	a.Shardblk.MarshalTL(w)
	w.WriteBytes(a.ShardProof)
	w.WriteBytes(a.Proof)
	w.WriteBytes(a.State)
}

func (a *AccountState) readFields(r *tl.Reader) error {
	if err := a.Id.UnmarshalTL(r); err != nil {
		return err
	}
	if err := a.Shardblk.UnmarshalTL(r); err != nil {
		return err
	}
	var err error
	if a.ShardProof, err = r.ReadBytes(); err != nil {
		return err
	}
	if a.Proof, err = r.ReadBytes(); err != nil {
		return err
	}
	a.State, err = r.ReadBytes()
	return err
}

// RunMethodResult is the answer to RunSmcMethod. ShardProof and Proof share
// mode bit 0 and are present or absent together.
type RunMethodResult struct {
	Id         BlockIdExt
	Shardblk   BlockIdExt
	ShardProof []byte // mode.0
	Proof      []byte // mode.0
	StateProof []byte // mode.1
	InitC7     []byte // mode.3
	LibExtras  []byte // mode.4
	ExitCode   int32
	Result     []byte // mode.2
}

func (RunMethodResult) isResponse() {}

func (m RunMethodResult) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idRunMethodResult)
	var mode uint32
	if m.ShardProof != nil || m.Proof != nil {
		mode |= 1 << 0
	}
	if m.StateProof != nil {
		mode |= 1 << 1
	}
	if m.Result != nil {
		mode |= 1 << 2
	}
	if m.InitC7 != nil {
		mode |= 1 << 3
	}
	if m.LibExtras != nil {
		mode |= 1 << 4
	}
	w.WriteUint32(mode)
	m.Id.MarshalTL(w)
	m.Shardblk.MarshalTL(w)
	if mode&(1<<0) != 0 {
		w.WriteBytes(m.ShardProof)
		w.WriteBytes(m.Proof)
	}
	if mode&(1<<1) != 0 {
		w.WriteBytes(m.StateProof)
	}
	if mode&(1<<3) != 0 {
		w.WriteBytes(m.InitC7)
	}
	if mode&(1<<4) != 0 {
		w.WriteBytes(m.LibExtras)
	}
	w.WriteInt32(m.ExitCode)
	if mode&(1<<2) != 0 {
		w.WriteBytes(m.Result)
	}
}

func (m *RunMethodResult) readFields(r *tl.Reader) error {
	mode, err := r.ReadUint32()
	if err != nil {
		return err
	}
	if err = m.Id.UnmarshalTL(r); err != nil {
		return err
	}
	if err = m.Shardblk.UnmarshalTL(r); err != nil {
		return err
	}
	if mode&(1<<0) != 0 {
		if m.ShardProof, err = r.ReadBytes(); err != nil {
			return err
		}
		if m.Proof, err = r.ReadBytes(); err != nil {
			return err
		}
	}
	if mode&(1<<1) != 0 {
		if m.StateProof, err = r.ReadBytes(); err != nil {
			return err
		}
	}
	if mode&(1<<3) != 0 {
		if m.InitC7, err = r.ReadBytes(); err != nil {
			return err
		}
	}
	if mode&(1<<4) != 0 {
		if m.LibExtras, err = r.ReadBytes(); err != nil {
			return err
		}
	}
	if m.ExitCode, err = r.ReadInt32(); err != nil {
		return err
	}
	if mode&(1<<2) != 0 {
		if m.Result, err = r.ReadBytes(); err != nil {
			return err
		}
	}
	return nil
}

// ShardInfo is the answer to GetShardInfo.
type ShardInfo struct {
	Id         BlockIdExt
	Shardblk   BlockIdExt
	ShardProof []byte
	ShardDescr []byte
}

func (ShardInfo) isResponse() {}

func (s ShardInfo) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idShardInfo)
	s.Id.MarshalTL(w)
	s.Shardblk.MarshalTL(w)
	w.WriteBytes(s.ShardProof)
	w.WriteBytes(s.ShardDescr)
}

func (s *ShardInfo) readFields(r *tl.Reader) error {
	if err := s.Id.UnmarshalTL(r); err != nil {
		return err
	}
	if err := s.Shardblk.UnmarshalTL(r); err != nil {
		return err
	}
	var err error
	if s.ShardProof, err = r.ReadBytes(); err != nil {
		return err
	}
	s.ShardDescr, err = r.ReadBytes()
	return err
}

// AllShardsInfo is the answer to GetAllShardsInfo.
type AllShardsInfo struct {
	Id    BlockIdExt
	Proof []byte
	Data  []byte
}

func (AllShardsInfo) isResponse() {}

func (a AllShardsInfo) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idAllShardsInfo)
	a.Id.MarshalTL(w)
	w.WriteBytes(a.Proof)
	w.WriteBytes(a.Data)
}

func (a *AllShardsInfo) readFields(r *tl.Reader) error {
	if err := a.Id.UnmarshalTL(r); err != nil {
		return err
	}
	var err error
	if a.Proof, err = r.ReadBytes(); err != nil {
		return err
	}
	a.Data, err = r.ReadBytes()
	return err
}

// TransactionInfo is the answer to GetOneTransaction.
type TransactionInfo struct {
	Id          BlockIdExt
	Proof       []byte
	Transaction []byte
}

func (TransactionInfo) isResponse() {}

func (t TransactionInfo) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idTransactionInfo)
	t.Id.MarshalTL(w)
	w.WriteBytes(t.Proof)
	w.WriteBytes(t.Transaction)
}

func (t *TransactionInfo) readFields(r *tl.Reader) error {
	if err := t.Id.UnmarshalTL(r); err != nil {
		return err
	}
	var err error
	if t.Proof, err = r.ReadBytes(); err != nil {
		return err
	}
	t.Transaction, err = r.ReadBytes()
	return err
}

// TransactionList is the answer to GetTransactions.
type TransactionList struct {
	Ids          []BlockIdExt
	Transactions []byte
}

func (TransactionList) isResponse() {}

func (t TransactionList) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idTransactionList)
	w.WriteVectorLen(len(t.Ids))
	for _, id := range t.Ids {
		id.MarshalTL(w)
	}
	w.WriteBytes(t.Transactions)
}

func (t *TransactionList) readFields(r *tl.Reader) error {
	n, err := r.ReadVectorLen()
	if err != nil {
		return err
	}
	t.Ids = make([]BlockIdExt, n)
	for i := range t.Ids {
		if err := t.Ids[i].UnmarshalTL(r); err != nil {
			return err
		}
	}
	t.Transactions, err = r.ReadBytes()
	return err
}

// TransactionIdResponse is the boxed form of TransactionId when it appears as
// a standalone answer.
type TransactionIdResponse struct {
	TransactionId
}

func (TransactionIdResponse) isResponse() {}

func (t TransactionIdResponse) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idTransactionId)
	t.TransactionId.MarshalTL(w)
}

// BlockTransactions is the answer to ListBlockTransactions.
type BlockTransactions struct {
	Id         BlockIdExt
	ReqCount   uint32
	Incomplete bool
	Ids        []TransactionId
	Proof      []byte
}

func (BlockTransactions) isResponse() {}

func (b BlockTransactions) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idBlockTransactions)
	b.Id.MarshalTL(w)
	w.WriteUint32(b.ReqCount)
	w.WriteBool(b.Incomplete)
	w.WriteVectorLen(len(b.Ids))
	for _, id := range b.Ids {
		id.MarshalTL(w)
	}
	w.WriteBytes(b.Proof)
}

func (b *BlockTransactions) readFields(r *tl.Reader) error {
	if err := b.Id.UnmarshalTL(r); err != nil {
		return err
	}
	var err error
	if b.ReqCount, err = r.ReadUint32(); err != nil {
		return err
	}
	if b.Incomplete, err = r.ReadBool(); err != nil {
		return err
	}
	n, err := r.ReadVectorLen()
	if err != nil {
		return err
	}
	b.Ids = make([]TransactionId, n)
	for i := range b.Ids {
		if err := b.Ids[i].UnmarshalTL(r); err != nil {
			return err
		}
	}
	b.Proof, err = r.ReadBytes()
	return err
}

// PartialBlockProof is the answer to GetBlockProof.
type PartialBlockProof struct {
	Complete bool
	From     BlockIdExt
	To       BlockIdExt
	Steps    []BlockLink
}

func (PartialBlockProof) isResponse() {}

func (p PartialBlockProof) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idPartialBlockProof)
	w.WriteBool(p.Complete)
	p.From.MarshalTL(w)
	p.To.MarshalTL(w)
	w.WriteVectorLen(len(p.Steps))
	for _, s := range p.Steps {
		s.MarshalTL(w)
	}
}

func (p *PartialBlockProof) readFields(r *tl.Reader) error {
	var err error
	if p.Complete, err = r.ReadBool(); err != nil {
		return err
	}
	if err = p.From.UnmarshalTL(r); err != nil {
		return err
	}
	if err = p.To.UnmarshalTL(r); err != nil {
		return err
	}
	n, err := r.ReadVectorLen()
	if err != nil {
		return err
	}
	p.Steps = make([]BlockLink, n)
	for i := range p.Steps {
		if p.Steps[i], err = readBlockLink(r); err != nil {
			return err
		}
	}
	return nil
}

// ConfigInfo is the answer to GetConfigAll and GetConfigParams. The With*
// fields mirror the request mode; the proofs carry the actual content.
type ConfigInfo struct {
	Id                  BlockIdExt
	StateProof          []byte
	ConfigProof         []byte
	WithStateRoot       bool // mode.0
	WithLibraries       bool // mode.1
	WithStateExtraRoot  bool // mode.2
	WithShardHashes     bool // mode.3
	WithValidatorSet    bool // mode.4
	WithSpecialSmc      bool // mode.5
	WithAccountsRoot    bool // mode.6
	WithPrevBlocks      bool // mode.7
	WithWorkchainInfo   bool // mode.8
	WithCapabilities    bool // mode.9
	ExtractFromKeyBlock bool // mode.15
}

func (ConfigInfo) isResponse() {}

func (c ConfigInfo) mode() uint32 {
	var mode uint32
	set := func(bit int, on bool) {
		if on {
			mode |= 1 << bit
		}
	}
	set(0, c.WithStateRoot)
	set(1, c.WithLibraries)
	set(2, c.WithStateExtraRoot)
	set(3, c.WithShardHashes)
	set(4, c.WithValidatorSet)
	set(5, c.WithSpecialSmc)
	set(6, c.WithAccountsRoot)
	set(7, c.WithPrevBlocks)
	set(8, c.WithWorkchainInfo)
	set(9, c.WithCapabilities)
	set(15, c.ExtractFromKeyBlock)
	return mode
}

func (c ConfigInfo) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idConfigInfo)
	w.WriteUint32(c.mode())
	c.Id.MarshalTL(w)
	w.WriteBytes(c.StateProof)
	w.WriteBytes(c.ConfigProof)
}

func (c *ConfigInfo) readFields(r *tl.Reader) error {
	mode, err := r.ReadUint32()
	if err != nil {
		return err
	}
	c.WithStateRoot = mode&(1<<0) != 0
	c.WithLibraries = mode&(1<<1) != 0
	c.WithStateExtraRoot = mode&(1<<2) != 0
	c.WithShardHashes = mode&(1<<3) != 0
	c.WithValidatorSet = mode&(1<<4) != 0
	c.WithSpecialSmc = mode&(1<<5) != 0
	c.WithAccountsRoot = mode&(1<<6) != 0
	c.WithPrevBlocks = mode&(1<<7) != 0
	c.WithWorkchainInfo = mode&(1<<8) != 0
	c.WithCapabilities = mode&(1<<9) != 0
	c.ExtractFromKeyBlock = mode&(1<<15) != 0
	if err = c.Id.UnmarshalTL(r); err != nil {
		return err
	}
	if c.StateProof, err = r.ReadBytes(); err != nil {
		return err
	}
	c.ConfigProof, err = r.ReadBytes()
	return err
}

// ValidatorStats is the answer to GetValidatorStats.
type ValidatorStats struct {
	Id         BlockIdExt
	Count      uint32
	Complete   bool
	StateProof []byte
	DataProof  []byte
}

func (ValidatorStats) isResponse() {}

func (v ValidatorStats) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idValidatorStats)
	w.WriteUint32(0) // mode, no optional fields defined
	v.Id.MarshalTL(w)
	w.WriteUint32(v.Count)
	w.WriteBool(v.Complete)
	w.WriteBytes(v.StateProof)
	w.WriteBytes(v.DataProof)
}

func (v *ValidatorStats) readFields(r *tl.Reader) error {
	if _, err := r.ReadUint32(); err != nil {
		return err
	}
	var err error
	if err = v.Id.UnmarshalTL(r); err != nil {
		return err
	}
	if v.Count, err = r.ReadUint32(); err != nil {
		return err
	}
	if v.Complete, err = r.ReadBool(); err != nil {
		return err
	}
	if v.StateProof, err = r.ReadBytes(); err != nil {
		return err
	}
	v.DataProof, err = r.ReadBytes()
	return err
}

// LibraryResult is the answer to GetLibraries.
type LibraryResult struct {
	Result []LibraryEntry
}

func (LibraryResult) isResponse() {}

func (l LibraryResult) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idLibraryResult)
	w.WriteVectorLen(len(l.Result))
	for _, e := range l.Result {
		e.MarshalTL(w)
	}
}

func (l *LibraryResult) readFields(r *tl.Reader) error {
	n, err := r.ReadVectorLen()
	if err != nil {
		return err
	}
	l.Result = make([]LibraryEntry, n)
	for i := range l.Result {
		if err := l.Result[i].UnmarshalTL(r); err != nil {
			return err
		}
	}
	return nil
}

// LibraryResultWithProof is the answer to GetLibrariesWithProof.
type LibraryResultWithProof struct {
	Id         BlockIdExt
	Result     []LibraryEntry
	StateProof []byte
	DataProof  []byte
}

func (LibraryResultWithProof) isResponse() {}

func (l LibraryResultWithProof) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idLibraryResultWithProof)
	l.Id.MarshalTL(w)
	w.WriteUint32(0) // mode, no optional fields defined
	w.WriteVectorLen(len(l.Result))
	for _, e := range l.Result {
		e.MarshalTL(w)
	}
	w.WriteBytes(l.StateProof)
	w.WriteBytes(l.DataProof)
}

func (l *LibraryResultWithProof) readFields(r *tl.Reader) error {
	if err := l.Id.UnmarshalTL(r); err != nil {
		return err
	}
	if _, err := r.ReadUint32(); err != nil {
		return err
	}
	n, err := r.ReadVectorLen()
	if err != nil {
		return err
	}
	l.Result = make([]LibraryEntry, n)
	for i := range l.Result {
		if err := l.Result[i].UnmarshalTL(r); err != nil {
			return err
		}
	}
	if l.StateProof, err = r.ReadBytes(); err != nil {
		return err
	}
	l.DataProof, err = r.ReadBytes()
	return err
}

// Error is the typed failure a server may return in place of any positive
// response.
//
// liteServer.error code:int message:string
type Error struct {
	Code    int32
	Message string
}

func (Error) isResponse() {}

func (e Error) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idError)
	w.WriteInt32(e.Code)
	w.WriteString(e.Message)
}

func (e *Error) readFields(r *tl.Reader) error {
	var err error
	if e.Code, err = r.ReadInt32(); err != nil {
		return err
	}
	e.Message, err = r.ReadString()
	return err
}

// readResponse decodes a boxed response, dispatching on its constructor id.
func readResponse(r *tl.Reader) (Response, error) {
	id, err := r.ReadConstructor()
	if err != nil {
		return nil, err
	}
	switch id {
	case idMasterchainInfo:
		var v MasterchainInfo
		err = v.readFields(r)
		return v, err
	case idMasterchainInfoExt:
		var v MasterchainInfoExt
		err = v.readFields(r)
		return v, err
	case idCurrentTime:
		var v CurrentTime
		err = v.readFields(r)
		return v, err
	case idVersion:
		var v Version
		err = v.readFields(r)
		return v, err
	case idBlockData:
		var v BlockData
		err = v.readFields(r)
		return v, err
	case idBlockState:
		var v BlockState
		err = v.readFields(r)
		return v, err
	case idBlockHeader:
		var v BlockHeader
		err = v.readFields(r)
		return v, err
	case idSendMsgStatus:
		var v SendMsgStatus
		err = v.readFields(r)
		return v, err
	case idAccountState:
		var v AccountState
		err = v.readFields(r)
		return v, err
	case idRunMethodResult:
		var v RunMethodResult
		err = v.readFields(r)
		return v, err
	case idShardInfo:
		var v ShardInfo
		err = v.readFields(r)
		return v, err
	case idAllShardsInfo:
		var v AllShardsInfo
		err = v.readFields(r)
		return v, err
	case idTransactionInfo:
		var v TransactionInfo
		err = v.readFields(r)
		return v, err
	case idTransactionList:
		var v TransactionList
		err = v.readFields(r)
		return v, err
	case idTransactionId:
		var v TransactionIdResponse
		err = v.TransactionId.UnmarshalTL(r)
		return v, err
	case idBlockTransactions:
		var v BlockTransactions
		err = v.readFields(r)
		return v, err
	case idPartialBlockProof:
		var v PartialBlockProof
		err = v.readFields(r)
		return v, err
	case idConfigInfo:
		var v ConfigInfo
		err = v.readFields(r)
		return v, err
	case idValidatorStats:
		var v ValidatorStats
		err = v.readFields(r)
		return v, err
	case idLibraryResult:
		var v LibraryResult
		err = v.readFields(r)
		return v, err
	case idLibraryResultWithProof:
		var v LibraryResultWithProof
		err = v.readFields(r)
		return v, err
	case idError:
		var v Error
		err = v.readFields(r)
		return v, err
	default:
		return nil, fmt.Errorf("%w: 0x%08x is not a response", tl.ErrUnknownConstructor, id)
	}
}

// DecodeResponse decodes a full serialized response buffer.
func DecodeResponse(data []byte) (Response, error) {
	r := tl.NewReader(data)
	resp, err := readResponse(r)
	if err != nil {
		return nil, err
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	return resp, nil
}
