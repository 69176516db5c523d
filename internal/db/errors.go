package db

import "errors"

var (
	// ErrKeyNotFound is returned for reads of an absent key.
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrIndexNotFound is returned when an FT command names an index that does not exist.
	ErrIndexNotFound = errors.New("db: index not found")
	// ErrIndexExists is returned by CreateIndex for a name already taken.
	ErrIndexExists = errors.New("db: index already exists")
)

// Command names reported in Error.Op.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpDel         = "DEL"
	OpHGetAll     = "HGETALL"
	OpHSet        = "HSET"
	OpGet         = "GET"
	OpSet         = "SET"
	OpIncrBy      = "INCRBY"
	OpExpire      = "EXPIRE"
	OpScan        = "SCAN"
	OpPing        = "PING"
)

// Error is a failed store command. Key is the key or index it targeted, if any.
// Anything other than the sentinels above means the store itself misbehaved.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return e.Op + " " + e.Key + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
