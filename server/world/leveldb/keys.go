package leveldb

import (
	"encoding/binary"

	"github.com/df-mc/blockflow/server/block/cube"
)

// Keys of the database. Cells are stored under keyCell followed by the packed position, pending ticks under keyTick
// followed by their index in scheduling order.
var (
	keyStep    = []byte("step")
	keyVersion = []byte("version")
	keyCell    = []byte("c")
	keyTick    = []byte("t")
)

// version is the layout version of the database written by Save.
const version = 1

func cellKey(pos cube.Pos) []byte {
	return binary.BigEndian.AppendUint64(append([]byte(nil), keyCell...), uint64(pos.Pack()))
}

func tickKey(i int) []byte {
	return binary.BigEndian.AppendUint32(append([]byte(nil), keyTick...), uint32(i))
}

// posFromCellKey returns the position encoded in a key produced by cellKey.
func posFromCellKey(k []byte) (cube.Pos, bool) {
	if len(k) != len(keyCell)+8 {
		return cube.Pos{}, false
	}
	return cube.Unpack(int64(binary.BigEndian.Uint64(k[len(keyCell):]))), true
}
