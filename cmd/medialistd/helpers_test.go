package main

import (
	"strconv"
	"testing"

	"medialist/internal/scanlock"
)

func jsonNumber(id int64) string {
	return strconv.FormatInt(id, 10)
}

func otherLock(t *testing.T, dbPath string) *scanlock.Lock {
	t.Helper()
	lock := scanlock.ForDatabase(dbPath)
	if err := lock.TryLock(); err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	return lock
}
