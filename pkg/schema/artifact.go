package schema

// ContractArtifact is the compiler's structured output for one contract.
// Only ContractName and the ABI function names are consumed by the flow
// engine; parameter types are carried through for boundary tooling.
type ContractArtifact struct {
	ContractName string        `json:"contractName"`
	ABI          []ABIFunction `json:"abi"`
}

// ABIFunction is one callable entry point of a compiled contract.
// An empty Name denotes the constructor/fallback entry.
type ABIFunction struct {
	Name   string         `json:"name"`
	Inputs []ABIParameter `json:"inputs"`
}

// ABIParameter is a typed input of an ABI function.
type ABIParameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
