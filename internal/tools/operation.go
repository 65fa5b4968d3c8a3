package tools

// Operation is one of the fixed set of tools offered to the model.
type Operation int

const (
	OpCreateStickyNote Operation = iota
	OpCreateShape
	OpCreateText
	OpCreateLine
	OpCreateFrame
	OpCreateConnector
	OpMoveObject
	OpResizeObject
	OpUpdateText
	OpChangeColor
	OpDeleteObject
	OpBulkCreate
	OpDeleteAll

	numOperations
)

var operationNames = [numOperations]string{
	OpCreateStickyNote: "createStickyNote",
	OpCreateShape:      "createShape",
	OpCreateText:       "createText",
	OpCreateLine:       "createLine",
	OpCreateFrame:      "createFrame",
	OpCreateConnector:  "createConnector",
	OpMoveObject:       "moveObject",
	OpResizeObject:     "resizeObject",
	OpUpdateText:       "updateText",
	OpChangeColor:      "changeColor",
	OpDeleteObject:     "deleteObject",
	OpBulkCreate:       "bulkCreate",
	OpDeleteAll:        "deleteAll",
}

var operationsByName = func() map[string]Operation {
	m := make(map[string]Operation, numOperations)
	for op, name := range operationNames {
		m[name] = Operation(op)
	}
	return m
}()

// String returns the tool name the model calls.
func (o Operation) String() string {
	if o < 0 || o >= numOperations {
		return "unknown"
	}
	return operationNames[o]
}

// ParseOperation looks up an operation by tool name. Names are case-sensitive.
func ParseOperation(name string) (Operation, bool) {
	op, ok := operationsByName[name]
	return op, ok
}

// Operations returns every operation in catalog order.
func Operations() []Operation {
	ops := make([]Operation, numOperations)
	for i := range ops {
		ops[i] = Operation(i)
	}
	return ops
}

// Family groups operations by the kind of edit they make.
type Family string

const (
	FamilyCreate Family = "create"
	FamilyMutate Family = "mutate"
	FamilyDelete Family = "delete"
	FamilyBulk   Family = "bulk"
)

func (o Operation) Family() Family {
	switch o {
	case OpCreateStickyNote, OpCreateShape, OpCreateText, OpCreateLine, OpCreateFrame, OpCreateConnector:
		return FamilyCreate
	case OpMoveObject, OpResizeObject, OpUpdateText, OpChangeColor:
		return FamilyMutate
	case OpDeleteObject:
		return FamilyDelete
	default:
		return FamilyBulk
	}
}
