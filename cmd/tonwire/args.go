package main

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"

	"github.com/tonwire/tonwire/internal/liteapi"
)

var blockIdExtRe = regexp.MustCompile(`^\((-?\d+),([a-fA-F0-9]+),(\d+)\):([a-fA-F0-9]{64}):([a-fA-F0-9]{64})$`)

// parseBlockIdExt parses the conventional
// (workchain,shard_hex,seqno):root_hash_hex:file_hash_hex form.
func parseBlockIdExt(s string) (liteapi.BlockIdExt, error) {
	m := blockIdExtRe.FindStringSubmatch(s)
	if m == nil {
		return liteapi.BlockIdExt{}, fmt.Errorf("wrong block id format, must be (workchain,shard_hex,seqno):root_hash:file_hash")
	}
	workchain, err := strconv.ParseInt(m[1], 10, 32)
	if err != nil {
		return liteapi.BlockIdExt{}, fmt.Errorf("can't parse workchain %q: %w", m[1], err)
	}
	shard, err := strconv.ParseUint(m[2], 16, 64)
	if err != nil {
		return liteapi.BlockIdExt{}, fmt.Errorf("can't parse shard %q: %w", m[2], err)
	}
	seqno, err := strconv.ParseUint(m[3], 10, 32)
	if err != nil {
		return liteapi.BlockIdExt{}, fmt.Errorf("can't parse seqno %q: %w", m[3], err)
	}
	rootHash, err := liteapi.ParseInt256(m[4])
	if err != nil {
		return liteapi.BlockIdExt{}, fmt.Errorf("can't parse root_hash: %w", err)
	}
	fileHash, err := liteapi.ParseInt256(m[5])
	if err != nil {
		return liteapi.BlockIdExt{}, fmt.Errorf("can't parse file_hash: %w", err)
	}
	return liteapi.BlockIdExt{
		Workchain: int32(workchain),
		Shard:     shard,
		Seqno:     uint32(seqno),
		RootHash:  rootHash,
		FileHash:  fileHash,
	}, nil
}

var blockIdRe = regexp.MustCompile(`^\((-?\d+),([a-fA-F0-9]+),(\d+)\)$`)

// parseBlockId parses the (workchain,shard_hex,seqno) form without hashes.
func parseBlockId(s string) (liteapi.BlockId, error) {
	m := blockIdRe.FindStringSubmatch(s)
	if m == nil {
		return liteapi.BlockId{}, fmt.Errorf("wrong block id format, must be (workchain,shard_hex,seqno)")
	}
	workchain, err := strconv.ParseInt(m[1], 10, 32)
	if err != nil {
		return liteapi.BlockId{}, fmt.Errorf("can't parse workchain %q: %w", m[1], err)
	}
	shard, err := strconv.ParseUint(m[2], 16, 64)
	if err != nil {
		return liteapi.BlockId{}, fmt.Errorf("can't parse shard %q: %w", m[2], err)
	}
	seqno, err := strconv.ParseUint(m[3], 10, 32)
	if err != nil {
		return liteapi.BlockId{}, fmt.Errorf("can't parse seqno %q: %w", m[3], err)
	}
	return liteapi.BlockId{
		Workchain: int32(workchain),
		Shard:     shard,
		Seqno:     uint32(seqno),
	}, nil
}

// parseAccountBase64 parses the URL-safe base64 36-byte account form:
// flags(1) | workchain(1) | hash(32) | crc(2).
func parseAccountBase64(s string) (liteapi.AccountId, error) {
	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(s)
	}
	if err != nil {
		return liteapi.AccountId{}, fmt.Errorf("invalid base64: %w", err)
	}
	if len(raw) != 36 {
		return liteapi.AccountId{}, fmt.Errorf("wrong length for base64 address, expected 36, got %d", len(raw))
	}
	var id liteapi.Int256
	copy(id[:], raw[2:34])
	return liteapi.AccountId{
		Workchain: int32(int8(raw[1])),
		Id:        id,
	}, nil
}

// parseAccountRaw parses the workchain:hex_hash account form.
func parseAccountRaw(s string) (liteapi.AccountId, error) {
	re := regexp.MustCompile(`^(-?\d+):([a-fA-F0-9]{64})$`)
	m := re.FindStringSubmatch(s)
	if m == nil {
		return liteapi.AccountId{}, fmt.Errorf("wrong address format, must be <workchain>:<account_hex>")
	}
	workchain, err := strconv.ParseInt(m[1], 10, 32)
	if err != nil {
		return liteapi.AccountId{}, fmt.Errorf("wrong workchain %q", m[1])
	}
	id, err := liteapi.ParseInt256(m[2])
	if err != nil {
		return liteapi.AccountId{}, fmt.Errorf("wrong account id %q", m[2])
	}
	return liteapi.AccountId{Workchain: int32(workchain), Id: id}, nil
}

// parseAccountId accepts both account forms.
func parseAccountId(s string) (liteapi.AccountId, error) {
	account, b64Err := parseAccountBase64(s)
	if b64Err == nil {
		return account, nil
	}
	account, rawErr := parseAccountRaw(s)
	if rawErr == nil {
		return account, nil
	}
	return liteapi.AccountId{}, fmt.Errorf("can't parse account as base64 (%v) or as raw (%v)", b64Err, rawErr)
}
