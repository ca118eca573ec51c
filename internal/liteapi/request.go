package liteapi

import (
	"fmt"

	"github.com/tonwire/tonwire/internal/tl"
)

// Request constructor ids, written little-endian on the wire.
const (
	idGetMasterchainInfo    uint32 = 0x89b5e62e
	idGetMasterchainInfoExt uint32 = 0x70a671df
	idGetTime               uint32 = 0x16ad5a34
	idGetVersion            uint32 = 0x232b940b
	idGetBlock              uint32 = 0x6377cf0d
	idGetState              uint32 = 0xba6e2eb6
	idGetBlockHeader        uint32 = 0x21ec069e
	idSendMessage           uint32 = 0x690ad482
	idGetAccountState       uint32 = 0x6b890e25
	idRunSmcMethod          uint32 = 0x5cc65dd2
	idGetShardInfo          uint32 = 0x46a2f425
	idGetAllShardsInfo      uint32 = 0x74d3fd6b
	idGetOneTransaction     uint32 = 0xd40f24ea
	idGetTransactions       uint32 = 0x1c40e7a1
	idLookupBlock           uint32 = 0xfac8f71e
	idListBlockTransactions uint32 = 0xadfcc7da
	idGetBlockProof         uint32 = 0x8aea9c44
	idGetConfigAll          uint32 = 0x911b26b7
	idGetConfigParams       uint32 = 0x2a111c19
	idGetValidatorStats     uint32 = 0xe7253699
	idGetLibraries          uint32 = 0xd122b662
	idGetLibrariesWithProof uint32 = 0xd97693bd

	// idLiteQuery appears on the wire as the byte sequence df 06 8c 79.
	idLiteQuery            uint32 = 0x798c06df
	idWaitMasterchainSeqno uint32 = 0x016aadca
)

// Request is one of the boxed lite-server request variants. Implementations
// serialize themselves including their constructor id.
type Request interface {
	tl.Marshaler
	isRequest()
}

// WaitMasterchainSeqno asks the server to delay processing until the
// masterchain reaches seqno, waiting at most TimeoutMs.
//
// liteServer.waitMasterchainSeqno seqno:int timeout_ms:int
type WaitMasterchainSeqno struct {
	Seqno     uint32
	TimeoutMs uint32
}

func (s WaitMasterchainSeqno) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idWaitMasterchainSeqno)
	w.WriteUint32(s.Seqno)
	w.WriteUint32(s.TimeoutMs)
}

func (s *WaitMasterchainSeqno) UnmarshalTL(r *tl.Reader) error {
	if err := r.ExpectConstructor(idWaitMasterchainSeqno); err != nil {
		return err
	}
	var err error
	if s.Seqno, err = r.ReadUint32(); err != nil {
		return err
	}
	s.TimeoutMs, err = r.ReadUint32()
	return err
}

// WrappedRequest is the payload of a lite query: an optional leading
// WaitMasterchainSeqno followed by the request proper. The optional is read
// lossily so servers can introduce new leading fields without breaking old
// clients.
type WrappedRequest struct {
	WaitMasterchainSeqno *WaitMasterchainSeqno
	Request              Request
}

func (q WrappedRequest) MarshalTL(w *tl.Writer) {
	if q.WaitMasterchainSeqno != nil {
		q.WaitMasterchainSeqno.MarshalTL(w)
	}
	q.Request.MarshalTL(w)
}

func (q *WrappedRequest) UnmarshalTL(r *tl.Reader) error {
	var wait WaitMasterchainSeqno
	if r.ReadOptional(&wait) {
		q.WaitMasterchainSeqno = &wait
	} else {
		q.WaitMasterchainSeqno = nil
	}
	req, err := readRequest(r)
	if err != nil {
		return err
	}
	q.Request = req
	return nil
}

// LiteQuery is the boxed carrier of a serialized WrappedRequest.
//
// liteServer.query data:bytes
type LiteQuery struct {
	WrappedRequest WrappedRequest
}

func (q LiteQuery) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idLiteQuery)
	w.WriteNested(q.WrappedRequest)
}

func (q *LiteQuery) UnmarshalTL(r *tl.Reader) error {
	if err := r.ExpectConstructor(idLiteQuery); err != nil {
		return err
	}
	return r.ReadNested(&q.WrappedRequest)
}

// GetMasterchainInfo requests the latest masterchain block id.
type GetMasterchainInfo struct{}

func (GetMasterchainInfo) isRequest() {}

func (GetMasterchainInfo) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetMasterchainInfo)
}

// GetMasterchainInfoExt requests extended masterchain info.
type GetMasterchainInfoExt struct {
	Mode uint32
}

func (GetMasterchainInfoExt) isRequest() {}

func (g GetMasterchainInfoExt) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetMasterchainInfoExt)
	w.WriteUint32(g.Mode)
}

// GetTime requests the server's wall clock.
type GetTime struct{}

func (GetTime) isRequest() {}

func (GetTime) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetTime)
}

// GetVersion requests the server's protocol version and capabilities.
type GetVersion struct{}

func (GetVersion) isRequest() {}

func (GetVersion) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetVersion)
}

// GetBlock requests a full block by id.
type GetBlock struct {
	Id BlockIdExt
}

func (GetBlock) isRequest() {}

func (g GetBlock) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetBlock)
	g.Id.MarshalTL(w)
}

// GetState requests a full shard state by block id.
type GetState struct {
	Id BlockIdExt
}

func (GetState) isRequest() {}

func (g GetState) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetState)
	g.Id.MarshalTL(w)
}

// GetBlockHeader requests a block header proof.
type GetBlockHeader struct {
	Id   BlockIdExt
	Mode uint32
}

func (GetBlockHeader) isRequest() {}

func (g GetBlockHeader) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetBlockHeader)
	g.Id.MarshalTL(w)
	w.WriteUint32(g.Mode)
}

// SendMessage submits an external message to the network.
type SendMessage struct {
	Body []byte
}

func (SendMessage) isRequest() {}

func (g SendMessage) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idSendMessage)
	w.WriteBytes(g.Body)
}

// GetAccountState requests an account state with proofs.
type GetAccountState struct {
	Id      BlockIdExt
	Account AccountId
}

func (GetAccountState) isRequest() {}

func (g GetAccountState) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetAccountState)
	g.Id.MarshalTL(w)
	g.Account.MarshalTL(w)
}

// RunSmcMethod executes a get-method against an account state.
type RunSmcMethod struct {
	Mode     uint32
	Id       BlockIdExt
	Account  AccountId
	MethodId int64
	Params   []byte
}

func (RunSmcMethod) isRequest() {}

func (g RunSmcMethod) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idRunSmcMethod)
	w.WriteUint32(g.Mode)
	g.Id.MarshalTL(w)
	g.Account.MarshalTL(w)
	w.WriteInt64(g.MethodId)
	w.WriteBytes(g.Params)
}

// GetShardInfo requests the shard block containing a workchain/shard pair.
type GetShardInfo struct {
	Id        BlockIdExt
	Workchain int32
	Shard     uint64
	Exact     bool
}

func (GetShardInfo) isRequest() {}

func (g GetShardInfo) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetShardInfo)
	g.Id.MarshalTL(w)
	w.WriteInt32(g.Workchain)
	w.WriteUint64(g.Shard)
	w.WriteBool(g.Exact)
}

// GetAllShardsInfo requests the full shard configuration at a block.
type GetAllShardsInfo struct {
	Id BlockIdExt
}

func (GetAllShardsInfo) isRequest() {}

func (g GetAllShardsInfo) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetAllShardsInfo)
	g.Id.MarshalTL(w)
}

// GetOneTransaction requests a single transaction from a known block.
type GetOneTransaction struct {
	Id      BlockIdExt
	Account AccountId
	Lt      uint64
}

func (GetOneTransaction) isRequest() {}

func (g GetOneTransaction) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetOneTransaction)
	g.Id.MarshalTL(w)
	g.Account.MarshalTL(w)
	w.WriteUint64(g.Lt)
}

// GetTransactions requests up to Count transactions walking an account's
// history backwards from (Lt, Hash).
type GetTransactions struct {
	Count   uint32
	Account AccountId
	Lt      uint64
	Hash    Int256
}

func (GetTransactions) isRequest() {}

func (g GetTransactions) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetTransactions)
	w.WriteUint32(g.Count)
	g.Account.MarshalTL(w)
	w.WriteUint64(g.Lt)
	g.Hash.MarshalTL(w)
}

// LookupBlock finds a block by seqno, logical time or unix time.
type LookupBlock struct {
	Id    BlockId
	Lt    *uint64 // mode.1
	Utime *uint32 // mode.2
}

func (LookupBlock) isRequest() {}

func (g LookupBlock) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idLookupBlock)
	var mode uint32
	if g.Lt != nil {
		mode |= 1 << 1
	}
	if g.Utime != nil {
		mode |= 1 << 2
	}
	w.WriteUint32(mode)
	g.Id.MarshalTL(w)
	if g.Lt != nil {
		w.WriteUint64(*g.Lt)
	}
	if g.Utime != nil {
		w.WriteUint32(*g.Utime)
	}
}

// ListBlockTransactions enumerates transaction ids within a block.
type ListBlockTransactions struct {
	Id           BlockIdExt
	Count        uint32
	After        *TransactionId3 // mode.7
	ReverseOrder bool            // mode.6
	WantProof    bool            // mode.5
}

func (ListBlockTransactions) isRequest() {}

func (g ListBlockTransactions) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idListBlockTransactions)
	g.Id.MarshalTL(w)
	var mode uint32
	if g.WantProof {
		mode |= 1 << 5
	}
	if g.ReverseOrder {
		mode |= 1 << 6
	}
	if g.After != nil {
		mode |= 1 << 7
	}
	w.WriteUint32(mode)
	w.WriteUint32(g.Count)
	if g.After != nil {
		g.After.MarshalTL(w)
	}
}

// GetBlockProof requests a proof chain from a known block, optionally towards
// a specific target.
type GetBlockProof struct {
	KnownBlock  BlockIdExt
	TargetBlock *BlockIdExt // mode.0
}

func (GetBlockProof) isRequest() {}

func (g GetBlockProof) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetBlockProof)
	var mode uint32
	if g.TargetBlock != nil {
		mode |= 1 << 0
	}
	w.WriteUint32(mode)
	g.KnownBlock.MarshalTL(w)
	if g.TargetBlock != nil {
		g.TargetBlock.MarshalTL(w)
	}
}

// GetConfigAll requests the complete configuration at a block.
type GetConfigAll struct {
	Mode uint32
	Id   BlockIdExt
}

func (GetConfigAll) isRequest() {}

func (g GetConfigAll) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetConfigAll)
	w.WriteUint32(g.Mode)
	g.Id.MarshalTL(w)
}

// GetConfigParams requests specific configuration parameters at a block.
type GetConfigParams struct {
	Mode      uint32
	Id        BlockIdExt
	ParamList []int32
}

func (GetConfigParams) isRequest() {}

func (g GetConfigParams) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetConfigParams)
	w.WriteUint32(g.Mode)
	g.Id.MarshalTL(w)
	w.WriteVectorLen(len(g.ParamList))
	for _, p := range g.ParamList {
		w.WriteInt32(p)
	}
}

// GetValidatorStats pages through validator statistics at a block.
type GetValidatorStats struct {
	Id            BlockIdExt
	Limit         uint32
	StartAfter    *Int256 // mode.0
	ModifiedAfter *uint32 // mode.2
}

func (GetValidatorStats) isRequest() {}

func (g GetValidatorStats) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetValidatorStats)
	var mode uint32
	if g.StartAfter != nil {
		mode |= 1 << 0
	}
	if g.ModifiedAfter != nil {
		mode |= 1 << 2
	}
	w.WriteUint32(mode)
	g.Id.MarshalTL(w)
	w.WriteUint32(g.Limit)
	if g.StartAfter != nil {
		g.StartAfter.MarshalTL(w)
	}
	if g.ModifiedAfter != nil {
		w.WriteUint32(*g.ModifiedAfter)
	}
}

// GetLibraries requests library cells by hash.
type GetLibraries struct {
	LibraryList []Int256
}

func (GetLibraries) isRequest() {}

func (g GetLibraries) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetLibraries)
	w.WriteVectorLen(len(g.LibraryList))
	for _, h := range g.LibraryList {
		h.MarshalTL(w)
	}
}

// GetLibrariesWithProof requests library cells by hash together with
// membership proofs anchored at a block.
type GetLibrariesWithProof struct {
	Id          BlockIdExt
	Mode        uint32
	LibraryList []Int256
}

func (GetLibrariesWithProof) isRequest() {}

func (g GetLibrariesWithProof) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idGetLibrariesWithProof)
	g.Id.MarshalTL(w)
	w.WriteUint32(g.Mode)
	w.WriteVectorLen(len(g.LibraryList))
	for _, h := range g.LibraryList {
		h.MarshalTL(w)
	}
}

// readRequest decodes a boxed request, dispatching on its constructor id.
func readRequest(r *tl.Reader) (Request, error) {
	id, err := r.ReadConstructor()
	if err != nil {
		return nil, err
	}
	switch id {
	case idGetMasterchainInfo:
		return GetMasterchainInfo{}, nil
	case idGetMasterchainInfoExt:
		var g GetMasterchainInfoExt
		g.Mode, err = r.ReadUint32()
		return g, err
	case idGetTime:
		return GetTime{}, nil
	case idGetVersion:
		return GetVersion{}, nil
	case idGetBlock:
		var g GetBlock
		err = g.Id.UnmarshalTL(r)
		return g, err
	case idGetState:
		var g GetState
		err = g.Id.UnmarshalTL(r)
		return g, err
	case idGetBlockHeader:
		var g GetBlockHeader
		if err = g.Id.UnmarshalTL(r); err != nil {
			return nil, err
		}
		g.Mode, err = r.ReadUint32()
		return g, err
	case idSendMessage:
		var g SendMessage
		g.Body, err = r.ReadBytes()
		return g, err
	case idGetAccountState:
		var g GetAccountState
		if err = g.Id.UnmarshalTL(r); err != nil {
			return nil, err
		}
		err = g.Account.UnmarshalTL(r)
		return g, err
	case idRunSmcMethod:
		var g RunSmcMethod
		if g.Mode, err = r.ReadUint32(); err != nil {
			return nil, err
		}
		if err = g.Id.UnmarshalTL(r); err != nil {
			return nil, err
		}
		if err = g.Account.UnmarshalTL(r); err != nil {
			return nil, err
		}
		if g.MethodId, err = r.ReadInt64(); err != nil {
			return nil, err
		}
		g.Params, err = r.ReadBytes()
		return g, err
	case idGetShardInfo:
		var g GetShardInfo
		if err = g.Id.UnmarshalTL(r); err != nil {
			return nil, err
		}
		if g.Workchain, err = r.ReadInt32(); err != nil {
			return nil, err
		}
		if g.Shard, err = r.ReadUint64(); err != nil {
			return nil, err
		}
		g.Exact, err = r.ReadBool()
		return g, err
	case idGetAllShardsInfo:
		var g GetAllShardsInfo
		err = g.Id.UnmarshalTL(r)
		return g, err
	case idGetOneTransaction:
		var g GetOneTransaction
		if err = g.Id.UnmarshalTL(r); err != nil {
			return nil, err
		}
		if err = g.Account.UnmarshalTL(r); err != nil {
			return nil, err
		}
		g.Lt, err = r.ReadUint64()
		return g, err
	case idGetTransactions:
		var g GetTransactions
		if g.Count, err = r.ReadUint32(); err != nil {
			return nil, err
		}
		if err = g.Account.UnmarshalTL(r); err != nil {
			return nil, err
		}
		if g.Lt, err = r.ReadUint64(); err != nil {
			return nil, err
		}
		err = g.Hash.UnmarshalTL(r)
		return g, err
	case idLookupBlock:
		var g LookupBlock
		mode, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		if err = g.Id.UnmarshalTL(r); err != nil {
			return nil, err
		}
		if mode&(1<<1) != 0 {
			lt, err := r.ReadUint64()
			if err != nil {
				return nil, err
			}
			g.Lt = &lt
		}
		if mode&(1<<2) != 0 {
			utime, err := r.ReadUint32()
			if err != nil {
				return nil, err
			}
			g.Utime = &utime
		}
		return g, nil
	case idListBlockTransactions:
		var g ListBlockTransactions
		if err = g.Id.UnmarshalTL(r); err != nil {
			return nil, err
		}
		mode, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		if g.Count, err = r.ReadUint32(); err != nil {
			return nil, err
		}
		if mode&(1<<7) != 0 {
			g.After = new(TransactionId3)
			if err = g.After.UnmarshalTL(r); err != nil {
				return nil, err
			}
		}
		g.ReverseOrder = mode&(1<<6) != 0
		g.WantProof = mode&(1<<5) != 0
		return g, nil
	case idGetBlockProof:
		var g GetBlockProof
		mode, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		if err = g.KnownBlock.UnmarshalTL(r); err != nil {
			return nil, err
		}
		if mode&(1<<0) != 0 {
			g.TargetBlock = new(BlockIdExt)
			if err = g.TargetBlock.UnmarshalTL(r); err != nil {
				return nil, err
			}
		}
		return g, nil
	case idGetConfigAll:
		var g GetConfigAll
		if g.Mode, err = r.ReadUint32(); err != nil {
			return nil, err
		}
		err = g.Id.UnmarshalTL(r)
		return g, err
	case idGetConfigParams:
		var g GetConfigParams
		if g.Mode, err = r.ReadUint32(); err != nil {
			return nil, err
		}
		if err = g.Id.UnmarshalTL(r); err != nil {
			return nil, err
		}
		n, err := r.ReadVectorLen()
		if err != nil {
			return nil, err
		}
		g.ParamList = make([]int32, n)
		for i := range g.ParamList {
			if g.ParamList[i], err = r.ReadInt32(); err != nil {
				return nil, err
			}
		}
		return g, nil
	case idGetValidatorStats:
		var g GetValidatorStats
		mode, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		if err = g.Id.UnmarshalTL(r); err != nil {
			return nil, err
		}
		if g.Limit, err = r.ReadUint32(); err != nil {
			return nil, err
		}
		if mode&(1<<0) != 0 {
			g.StartAfter = new(Int256)
			if err = g.StartAfter.UnmarshalTL(r); err != nil {
				return nil, err
			}
		}
		if mode&(1<<2) != 0 {
			modified, err := r.ReadUint32()
			if err != nil {
				return nil, err
			}
			g.ModifiedAfter = &modified
		}
		return g, nil
	case idGetLibraries:
		var g GetLibraries
		n, err := r.ReadVectorLen()
		if err != nil {
			return nil, err
		}
		g.LibraryList = make([]Int256, n)
		for i := range g.LibraryList {
			if err = g.LibraryList[i].UnmarshalTL(r); err != nil {
				return nil, err
			}
		}
		return g, nil
	case idGetLibrariesWithProof:
		var g GetLibrariesWithProof
		if err = g.Id.UnmarshalTL(r); err != nil {
			return nil, err
		}
		if g.Mode, err = r.ReadUint32(); err != nil {
			return nil, err
		}
		n, err := r.ReadVectorLen()
		if err != nil {
			return nil, err
		}
		g.LibraryList = make([]Int256, n)
		for i := range g.LibraryList {
			if err = g.LibraryList[i].UnmarshalTL(r); err != nil {
				return nil, err
			}
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: 0x%08x is not a request", tl.ErrUnknownConstructor, id)
	}
}
