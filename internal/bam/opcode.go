package bam

import "fmt"

// ObjectCode is the per-record opcode.
type ObjectCode uint8

const (
	CodePush     ObjectCode = 0 // enter a nested scope, then one object
	CodePop      ObjectCode = 1 // leave the current scope
	CodeAdjunct  ObjectCode = 2 // one object at the current depth
	CodeRemove   ObjectCode = 3 // list of freed object ids
	CodeFileData ObjectCode = 4 // raw file-level data block
)

func (c ObjectCode) String() string {
	switch c {
	case CodePush:
		return "push"
	case CodePop:
		return "pop"
	case CodeAdjunct:
		return "adjunct"
	case CodeRemove:
		return "remove"
	case CodeFileData:
		return "file_data"
	}
	return fmt.Sprintf("ObjectCode(%d)", uint8(c))
}
