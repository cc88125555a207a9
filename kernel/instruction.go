package kernel

import "fmt"

// NumRegs is the number of registers of a process.
const NumRegs = 10

// An Opcode names an instruction.
type Opcode string

// Opcodes that touch memory.
const (
	OpCalc  Opcode = "calc"
	OpAlloc Opcode = "alloc"
	OpFree  Opcode = "free"
	OpRead  Opcode = "read"
	OpWrite Opcode = "write"
)

var opArity = map[Opcode]int{
	OpCalc:  0,
	OpAlloc: 2, // size, region
	OpFree:  1, // region
	OpRead:  3, // source region, offset, destination register
	OpWrite: 3, // data, destination region, offset
}

// An Instruction is one step of a process.
type Instruction struct {
	Op   Opcode
	Args []uint32
}

// Validate checks the opcode and the number of arguments.
func (i Instruction) Validate() error {
	n, ok := opArity[i.Op]
	if !ok {
		return fmt.Errorf("unknown opcode %q", i.Op)
	}

	if len(i.Args) != n {
		return fmt.Errorf("%s takes %d arguments, got %d",
			i.Op, n, len(i.Args))
	}

	return nil
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s %v", i.Op, i.Args)
}
