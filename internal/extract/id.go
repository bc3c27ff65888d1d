package extract

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
)

// DeriveEventID builds a deterministic id for an activity row that carries no
// transaction hash: the row text plus its position on the page, hashed.
// The same row at the same position always yields the same id.
func DeriveEventID(rowText string, index int) string {
	sum := md5.Sum([]byte(rowText + strconv.Itoa(index)))
	return "0x" + hex.EncodeToString(sum[:])
}
