package store

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	recoveryKeyRecordVersionV1 = 1

	maxRecoveryKeyIDLen = 65535
	maxRecoveryDataLen  = 1 << 20
)

var (
	ErrNotFound         = errors.New("recovery key record not found")
	ErrHintNotFound     = errors.New("recovery key hint not found")
	ErrRedisUnavailable = errors.New("recovery key redis unavailable")
)

// CreateOutcome is the tagged result of Create: the caller branches on
// conflict explicitly instead of catching an error code.
type CreateOutcome uint8

const (
	// CreateOK means the record was inserted.
	CreateOK CreateOutcome = iota
	// CreateConflict means a record (enabled or not) already exists for
	// the account.
	CreateConflict
)

// Record is one account's recovery-key record.
// RecoveryData is opaque to the server; it is stored and returned verbatim.
type Record struct {
	RecoveryKeyID string
	RecoveryData  []byte
	Enabled       bool
	CreatedAt     int64
}

// Record layout, fixed offsets so Lua can read/patch in place:
//
//	version(1) | enabled(1) | createdAt(8 BE) | kidLen(2 BE) | kid | dataLen(4 BE) | data
//
// enableLua verifies the stored recovery key id and flips the enabled byte.
// KEYS[1] = record key
// ARGV[1] = recovery key id
//
// Returns "ok" after enabling, "enabled" when already enabled,
// error "not_found" on absence or id mismatch.
var enableLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='not_found'}
end

local version = string.byte(data, 1)
if version ~= 1 then
  redis.call('DEL', KEYS[1])
  return {err='not_found'}
end

local kidLen = string.byte(data, 11) * 256 + string.byte(data, 12)
local kid = string.sub(data, 13, 12 + kidLen)
if kid ~= ARGV[1] then
  return {err='not_found'}
end

if string.byte(data, 2) == 1 then
  return 'enabled'
end

local updated = string.sub(data, 1, 1) .. string.char(1) .. string.sub(data, 3)
redis.call('SET', KEYS[1], updated)
return 'ok'
`)

// updateHintLua sets the hint only while a record exists for the account.
// KEYS[1] = record key, KEYS[2] = hint key
// ARGV[1] = hint
var updateHintLua = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {err='not_found'}
end
redis.call('SET', KEYS[2], ARGV[1])
return 'ok'
`)

// RecoveryKeys is the account-keyed store. At most one record per account;
// uniqueness is enforced by SET NX on the account key.
type RecoveryKeys struct {
	redis  redis.UniversalClient
	prefix string
}

// New creates a [RecoveryKeys] store backed by the given Redis client.
func New(redisClient redis.UniversalClient, prefix string) *RecoveryKeys {
	if prefix == "" {
		prefix = "ark"
	}
	return &RecoveryKeys{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RecoveryKeys) key(accountID string) string {
	return s.prefix + ":" + accountID
}

func (s *RecoveryKeys) hintKey(accountID string) string {
	return s.prefix + "h:" + accountID
}

// Create inserts the account's record if and only if none exists.
// A disabled leftover from an interrupted create also conflicts; resolving
// that (exists-check, delete, bounded retry) is the caller's protocol.
func (s *RecoveryKeys) Create(ctx context.Context, accountID string, record *Record) (CreateOutcome, error) {
	encoded, err := encodeRecord(record)
	if err != nil {
		return CreateConflict, err
	}

	created, err := s.redis.SetNX(ctx, s.key(accountID), encoded, 0).Result()
	if err != nil {
		return CreateConflict, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !created {
		return CreateConflict, nil
	}
	return CreateOK, nil
}

// Exists reports whether an enabled record exists. Disabled in-progress
// records do not count.
func (s *RecoveryKeys) Exists(ctx context.Context, accountID string) (bool, error) {
	data, err := s.redis.Get(ctx, s.key(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	record, err := decodeRecord(data)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return record.Enabled, nil
}

// Get returns the record when recoveryKeyID matches the stored id.
// Absence and id mismatch are indistinguishable to the caller.
func (s *RecoveryKeys) Get(ctx context.Context, accountID, recoveryKeyID string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	record, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// The id is public, but matching in constant time avoids making the
	// lookup a timing oracle for guessed ids.
	if len(record.RecoveryKeyID) != len(recoveryKeyID) ||
		subtle.ConstantTimeCompare([]byte(record.RecoveryKeyID), []byte(recoveryKeyID)) != 1 {
		return nil, ErrNotFound
	}

	return record, nil
}

// Enable transitions the record to enabled; a no-op when already enabled.
func (s *RecoveryKeys) Enable(ctx context.Context, accountID, recoveryKeyID string) error {
	_, err := enableLua.Run(ctx, s.redis, []string{s.key(accountID)}, recoveryKeyID).Result()
	if err != nil {
		if err.Error() == "not_found" {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Delete removes the record and its hint. Idempotent: deleting an absent
// record succeeds.
func (s *RecoveryKeys) Delete(ctx context.Context, accountID string) error {
	if err := s.redis.Del(ctx, s.key(accountID), s.hintKey(accountID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// UpdateHint stores the hint while a record (enabled or not) exists.
func (s *RecoveryKeys) UpdateHint(ctx context.Context, accountID, hint string) error {
	_, err := updateHintLua.Run(ctx, s.redis,
		[]string{s.key(accountID), s.hintKey(accountID)},
		hint,
	).Result()
	if err != nil {
		if err.Error() == "not_found" {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// GetHint returns the stored hint; [ErrHintNotFound] when none was set.
func (s *RecoveryKeys) GetHint(ctx context.Context, accountID string) (string, error) {
	hint, err := s.redis.Get(ctx, s.hintKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrHintNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return hint, nil
}

// Ping round-trips the backing Redis and reports the observed latency.
func (s *RecoveryKeys) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func encodeRecord(record *Record) ([]byte, error) {
	if len(record.RecoveryKeyID) == 0 || len(record.RecoveryKeyID) > maxRecoveryKeyIDLen {
		return nil, errors.New("invalid recovery key id length")
	}
	if len(record.RecoveryData) > maxRecoveryDataLen {
		return nil, errors.New("recovery data too large")
	}

	var buf bytes.Buffer

	buf.WriteByte(recoveryKeyRecordVersionV1)
	if record.Enabled {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	createdAt := record.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}
	if err := binary.Write(&buf, binary.BigEndian, createdAt); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.RecoveryKeyID))); err != nil {
		return nil, err
	}
	buf.WriteString(record.RecoveryKeyID)

	if err := binary.Write(&buf, binary.BigEndian, uint32(len(record.RecoveryData))); err != nil {
		return nil, err
	}
	buf.Write(record.RecoveryData)

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recoveryKeyRecordVersionV1 {
		return nil, errors.New("invalid recovery key record version")
	}

	enabled, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	record := &Record{
		Enabled: enabled == 1,
	}

	if err := binary.Read(reader, binary.BigEndian, &record.CreatedAt); err != nil {
		return nil, err
	}

	var kidLen uint16
	if err := binary.Read(reader, binary.BigEndian, &kidLen); err != nil {
		return nil, err
	}
	kid := make([]byte, kidLen)
	if _, err := io.ReadFull(reader, kid); err != nil {
		return nil, err
	}
	record.RecoveryKeyID = string(kid)

	var dataLen uint32
	if err := binary.Read(reader, binary.BigEndian, &dataLen); err != nil {
		return nil, err
	}
	if dataLen > maxRecoveryDataLen {
		return nil, errors.New("recovery data too large")
	}
	record.RecoveryData = make([]byte, dataLen)
	if _, err := io.ReadFull(reader, record.RecoveryData); err != nil {
		return nil, err
	}

	return record, nil
}
