// Package liteapi defines the lite-server message schema: the ADNL message
// envelope, the request and response catalogue with their fixed constructor
// ids, and the composable service layers that translate between them.
package liteapi

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/tonwire/tonwire/internal/tl"
)

// Int256 is a fixed 256-bit value serialized as 32 raw bytes. It is used for
// hashes, account ids and query correlation tags.
type Int256 [32]byte

// RandomInt256 draws a fresh value from the cryptographic RNG.
func RandomInt256() (Int256, error) {
	var v Int256
	if _, err := rand.Read(v[:]); err != nil {
		return v, fmt.Errorf("generate int256: %w", err)
	}
	return v, nil
}

// ParseInt256 parses a 64-character hex string.
func ParseInt256(s string) (Int256, error) {
	var v Int256
	b, err := hex.DecodeString(s)
	if err != nil {
		return v, fmt.Errorf("invalid int256 %q: %w", s, err)
	}
	if len(b) != 32 {
		return v, fmt.Errorf("invalid int256 length: got %d bytes, want 32", len(b))
	}
	copy(v[:], b)
	return v, nil
}

// String returns the hex representation.
func (v Int256) String() string {
	return hex.EncodeToString(v[:])
}

// MarshalTL implements tl.Marshaler.
func (v Int256) MarshalTL(w *tl.Writer) {
	w.WriteRaw(v[:])
}

// UnmarshalTL implements tl.Unmarshaler.
func (v *Int256) UnmarshalTL(r *tl.Reader) error {
	b, err := r.ReadRaw(32)
	if err != nil {
		return err
	}
	copy(v[:], b)
	return nil
}

// BlockId identifies a block by position only.
//
// tonNode.blockId workchain:int shard:long seqno:int
type BlockId struct {
	Workchain int32
	Shard     uint64
	Seqno     uint32
}

func (b BlockId) MarshalTL(w *tl.Writer) {
	w.WriteInt32(b.Workchain)
	w.WriteUint64(b.Shard)
	w.WriteUint32(b.Seqno)
}

func (b *BlockId) UnmarshalTL(r *tl.Reader) error {
	var err error
	if b.Workchain, err = r.ReadInt32(); err != nil {
		return err
	}
	if b.Shard, err = r.ReadUint64(); err != nil {
		return err
	}
	b.Seqno, err = r.ReadUint32()
	return err
}

// BlockIdExt identifies a block by position and content hashes.
//
// tonNode.blockIdExt workchain:int shard:long seqno:int root_hash:int256 file_hash:int256
type BlockIdExt struct {
	Workchain int32
	Shard     uint64
	Seqno     uint32
	RootHash  Int256
	FileHash  Int256
}

// String renders the id in the conventional
// (workchain,shard_hex,seqno):root_hash:file_hash form.
func (b BlockIdExt) String() string {
	return fmt.Sprintf("(%d,%X,%d):%s:%s", b.Workchain, b.Shard, b.Seqno, b.RootHash, b.FileHash)
}

func (b BlockIdExt) MarshalTL(w *tl.Writer) {
	w.WriteInt32(b.Workchain)
	w.WriteUint64(b.Shard)
	w.WriteUint32(b.Seqno)
	b.RootHash.MarshalTL(w)
	b.FileHash.MarshalTL(w)
}

func (b *BlockIdExt) UnmarshalTL(r *tl.Reader) error {
	var err error
	if b.Workchain, err = r.ReadInt32(); err != nil {
		return err
	}
	if b.Shard, err = r.ReadUint64(); err != nil {
		return err
	}
	if b.Seqno, err = r.ReadUint32(); err != nil {
		return err
	}
	if err = b.RootHash.UnmarshalTL(r); err != nil {
		return err
	}
	return b.FileHash.UnmarshalTL(r)
}

// ZeroStateIdExt identifies a workchain's zero state.
//
// tonNode.zeroStateIdExt workchain:int root_hash:int256 file_hash:int256
type ZeroStateIdExt struct {
	Workchain int32
	RootHash  Int256
	FileHash  Int256
}

func (z ZeroStateIdExt) MarshalTL(w *tl.Writer) {
	w.WriteInt32(z.Workchain)
	z.RootHash.MarshalTL(w)
	z.FileHash.MarshalTL(w)
}

func (z *ZeroStateIdExt) UnmarshalTL(r *tl.Reader) error {
	var err error
	if z.Workchain, err = r.ReadInt32(); err != nil {
		return err
	}
	if err = z.RootHash.UnmarshalTL(r); err != nil {
		return err
	}
	return z.FileHash.UnmarshalTL(r)
}

// AccountId addresses an account inside a workchain.
//
// liteServer.accountId workchain:int id:int256
type AccountId struct {
	Workchain int32
	Id        Int256
}

// String renders the account in workchain:hex form.
func (a AccountId) String() string {
	return fmt.Sprintf("%d:%s", a.Workchain, a.Id)
}

func (a AccountId) MarshalTL(w *tl.Writer) {
	w.WriteInt32(a.Workchain)
	a.Id.MarshalTL(w)
}

func (a *AccountId) UnmarshalTL(r *tl.Reader) error {
	var err error
	if a.Workchain, err = r.ReadInt32(); err != nil {
		return err
	}
	return a.Id.UnmarshalTL(r)
}

// TransactionId3 names a transaction by account and logical time.
//
// liteServer.transactionId3 account:int256 lt:long
type TransactionId3 struct {
	Account Int256
	Lt      uint64
}

func (t TransactionId3) MarshalTL(w *tl.Writer) {
	t.Account.MarshalTL(w)
	w.WriteUint64(t.Lt)
}

func (t *TransactionId3) UnmarshalTL(r *tl.Reader) error {
	if err := t.Account.UnmarshalTL(r); err != nil {
		return err
	}
	var err error
	t.Lt, err = r.ReadUint64()
	return err
}

// TransactionMetadata carries the initiator chain of a transaction.
//
// liteServer.transactionMetadata mode:# depth:int initiator:liteServer.accountId initiator_lt:long
type TransactionMetadata struct {
	Depth       uint32
	Initiator   AccountId
	InitiatorLt uint64
}

func (t TransactionMetadata) MarshalTL(w *tl.Writer) {
	w.WriteUint32(0) // mode, no optional fields defined
	w.WriteUint32(t.Depth)
	t.Initiator.MarshalTL(w)
	w.WriteUint64(t.InitiatorLt)
}

func (t *TransactionMetadata) UnmarshalTL(r *tl.Reader) error {
	if _, err := r.ReadUint32(); err != nil {
		return err
	}
	var err error
	if t.Depth, err = r.ReadUint32(); err != nil {
		return err
	}
	if err = t.Initiator.UnmarshalTL(r); err != nil {
		return err
	}
	t.InitiatorLt, err = r.ReadUint64()
	return err
}

// TransactionId is a partially-populated transaction reference; each field's
// presence is gated by a bit of the leading mode mask.
//
// liteServer.transactionId mode:# account:mode.0?int256 lt:mode.1?long
// hash:mode.2?int256 metadata:mode.8?liteServer.transactionMetadata
type TransactionId struct {
	Account  *Int256
	Lt       *uint64
	Hash     *Int256
	Metadata *TransactionMetadata
}

func (t TransactionId) MarshalTL(w *tl.Writer) {
	var mode uint32
	if t.Account != nil {
		mode |= 1 << 0
	}
	if t.Lt != nil {
		mode |= 1 << 1
	}
	if t.Hash != nil {
		mode |= 1 << 2
	}
	if t.Metadata != nil {
		mode |= 1 << 8
	}
	w.WriteUint32(mode)
	if t.Account != nil {
		t.Account.MarshalTL(w)
	}
	if t.Lt != nil {
		w.WriteUint64(*t.Lt)
	}
	if t.Hash != nil {
		t.Hash.MarshalTL(w)
	}
	if t.Metadata != nil {
		t.Metadata.MarshalTL(w)
	}
}

func (t *TransactionId) UnmarshalTL(r *tl.Reader) error {
	mode, err := r.ReadUint32()
	if err != nil {
		return err
	}
	t.Account, t.Lt, t.Hash, t.Metadata = nil, nil, nil, nil
	if mode&(1<<0) != 0 {
		t.Account = new(Int256)
		if err := t.Account.UnmarshalTL(r); err != nil {
			return err
		}
	}
	if mode&(1<<1) != 0 {
		lt, err := r.ReadUint64()
		if err != nil {
			return err
		}
		t.Lt = &lt
	}
	if mode&(1<<2) != 0 {
		t.Hash = new(Int256)
		if err := t.Hash.UnmarshalTL(r); err != nil {
			return err
		}
	}
	if mode&(1<<8) != 0 {
		t.Metadata = new(TransactionMetadata)
		if err := t.Metadata.UnmarshalTL(r); err != nil {
			return err
		}
	}
	return nil
}

// Signature is a validator signature over a block.
//
// liteServer.signature node_id_short:int256 signature:bytes
type Signature struct {
	NodeIdShort Int256
	Signature   []byte
}

func (s Signature) MarshalTL(w *tl.Writer) {
	s.NodeIdShort.MarshalTL(w)
	w.WriteBytes(s.Signature)
}

func (s *Signature) UnmarshalTL(r *tl.Reader) error {
	if err := s.NodeIdShort.UnmarshalTL(r); err != nil {
		return err
	}
	var err error
	s.Signature, err = r.ReadBytes()
	return err
}

// SignatureSet is a boxed set of validator signatures.
//
// liteServer.signatureSet validator_set_hash:int catchain_seqno:int
// signatures:(vector liteServer.signature)
type SignatureSet struct {
	ValidatorSetHash uint32
	CatchainSeqno    uint32
	Signatures       []Signature
}

const idSignatureSet uint32 = 0x92e15597

func (s SignatureSet) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idSignatureSet)
	w.WriteUint32(s.ValidatorSetHash)
	w.WriteUint32(s.CatchainSeqno)
	w.WriteVectorLen(len(s.Signatures))
	for _, sig := range s.Signatures {
		sig.MarshalTL(w)
	}
}

func (s *SignatureSet) UnmarshalTL(r *tl.Reader) error {
	if err := r.ExpectConstructor(idSignatureSet); err != nil {
		return err
	}
	var err error
	if s.ValidatorSetHash, err = r.ReadUint32(); err != nil {
		return err
	}
	if s.CatchainSeqno, err = r.ReadUint32(); err != nil {
		return err
	}
	n, err := r.ReadVectorLen()
	if err != nil {
		return err
	}
	s.Signatures = make([]Signature, n)
	for i := range s.Signatures {
		if err := s.Signatures[i].UnmarshalTL(r); err != nil {
			return err
		}
	}
	return nil
}

// BlockLink is one step of a block proof chain, either backward or forward.
type BlockLink interface {
	tl.Marshaler
	isBlockLink()
}

const (
	idBlockLinkBack    uint32 = 0xef7e1bef
	idBlockLinkForward uint32 = 0x520fce1c
)

// BlockLinkBack proves a link to an earlier block.
//
// liteServer.blockLinkBack to_key_block:Bool from:tonNode.blockIdExt
// to:tonNode.blockIdExt dest_proof:bytes proof:bytes state_proof:bytes
type BlockLinkBack struct {
	ToKeyBlock bool
	From       BlockIdExt
	To         BlockIdExt
	DestProof  []byte
	Proof      []byte
	StateProof []byte
}

func (BlockLinkBack) isBlockLink() {}

func (b BlockLinkBack) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idBlockLinkBack)
	w.WriteBool(b.ToKeyBlock)
	b.From.MarshalTL(w)
	b.To.MarshalTL(w)
	w.WriteBytes(b.DestProof)
	w.WriteBytes(b.Proof)
	w.WriteBytes(b.StateProof)
}

func (b *BlockLinkBack) UnmarshalTL(r *tl.Reader) error {
	var err error
	if b.ToKeyBlock, err = r.ReadBool(); err != nil {
		return err
	}
	if err = b.From.UnmarshalTL(r); err != nil {
		return err
	}
	if err = b.To.UnmarshalTL(r); err != nil {
		return err
	}
	if b.DestProof, err = r.ReadBytes(); err != nil {
		return err
	}
	if b.Proof, err = r.ReadBytes(); err != nil {
		return err
	}
	b.StateProof, err = r.ReadBytes()
	return err
}

// BlockLinkForward proves a link to a later block.
//
// liteServer.blockLinkForward to_key_block:Bool from:tonNode.blockIdExt
// to:tonNode.blockIdExt dest_proof:bytes config_proof:bytes
// signatures:liteServer.SignatureSet
type BlockLinkForward struct {
	ToKeyBlock  bool
	From        BlockIdExt
	To          BlockIdExt
	DestProof   []byte
	ConfigProof []byte
	Signatures  SignatureSet
}

func (BlockLinkForward) isBlockLink() {}

func (b BlockLinkForward) MarshalTL(w *tl.Writer) {
	w.WriteConstructor(idBlockLinkForward)
	w.WriteBool(b.ToKeyBlock)
	b.From.MarshalTL(w)
	b.To.MarshalTL(w)
	w.WriteBytes(b.DestProof)
	w.WriteBytes(b.ConfigProof)
	b.Signatures.MarshalTL(w)
}

func (b *BlockLinkForward) UnmarshalTL(r *tl.Reader) error {
	var err error
	if b.ToKeyBlock, err = r.ReadBool(); err != nil {
		return err
	}
	if err = b.From.UnmarshalTL(r); err != nil {
		return err
	}
	if err = b.To.UnmarshalTL(r); err != nil {
		return err
	}
	if b.DestProof, err = r.ReadBytes(); err != nil {
		return err
	}
	if b.ConfigProof, err = r.ReadBytes(); err != nil {
		return err
	}
	return b.Signatures.UnmarshalTL(r)
}

func readBlockLink(r *tl.Reader) (BlockLink, error) {
	id, err := r.ReadConstructor()
	if err != nil {
		return nil, err
	}
	switch id {
	case idBlockLinkBack:
		var b BlockLinkBack
		if err := b.UnmarshalTL(r); err != nil {
			return nil, err
		}
		return b, nil
	case idBlockLinkForward:
		var b BlockLinkForward
		if err := b.UnmarshalTL(r); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: 0x%08x is not a block link", tl.ErrUnknownConstructor, id)
	}
}

// LibraryEntry is a library cell published on chain.
//
// liteServer.libraryEntry hash:int256 data:bytes
type LibraryEntry struct {
	Hash Int256
	Data []byte
}

func (l LibraryEntry) MarshalTL(w *tl.Writer) {
	l.Hash.MarshalTL(w)
	w.WriteBytes(l.Data)
}

func (l *LibraryEntry) UnmarshalTL(r *tl.Reader) error {
	if err := l.Hash.UnmarshalTL(r); err != nil {
		return err
	}
	var err error
	l.Data, err = r.ReadBytes()
	return err
}
