package ast

// Flag is a per-kind boolean, the equivalent of as2js's flag_t. Flags are
// grouped by the kind(s) they apply to; SetFlag validates membership and
// calls diag.Bug on mismatch (spec.md §4.1, "setting a flag not valid for
// the node's kind is a programmer error").
type Flag int

const (
	CatchTyped Flag = iota

	DirectiveListNewVariables

	ForConst
	ForForeach
	ForIn

	FunctionGetter
	FunctionSetter
	FunctionOut
	FunctionVoid
	FunctionNever
	FunctionNoParams
	FunctionOperator

	IdentifierWith
	IdentifierTyped
	IdentifierOperator

	ParamConst
	ParamIn
	ParamOut
	ParamNamed
	ParamRest
	ParamUnchecked
	ParamUnprototyped
	ParamReferenced
	ParamParamRef
	ParamCatch

	SwitchDefault

	TypeModulo

	VariableConst
	VariableFinal
	VariableLocal
	VariableMember
	VariableAttributes
	VariableEnum
	VariableCompiled
	VariableInUse
	VariableDefined
	VariableDefining
	VariableToAdd
	VariableTemporary
)

var flagNames = map[Flag]string{
	CatchTyped:                "CatchTyped",
	DirectiveListNewVariables: "DirectiveListNewVariables",
	ForConst:                  "ForConst",
	ForForeach:                "ForForeach",
	ForIn:                     "ForIn",
	FunctionGetter:            "FunctionGetter",
	FunctionSetter:            "FunctionSetter",
	FunctionOut:               "FunctionOut",
	FunctionVoid:              "FunctionVoid",
	FunctionNever:             "FunctionNever",
	FunctionNoParams:          "FunctionNoParams",
	FunctionOperator:          "FunctionOperator",
	IdentifierWith:            "IdentifierWith",
	IdentifierTyped:           "IdentifierTyped",
	IdentifierOperator:        "IdentifierOperator",
	ParamConst:                "ParamConst",
	ParamIn:                   "ParamIn",
	ParamOut:                  "ParamOut",
	ParamNamed:                "ParamNamed",
	ParamRest:                 "ParamRest",
	ParamUnchecked:            "ParamUnchecked",
	ParamUnprototyped:         "ParamUnprototyped",
	ParamReferenced:           "ParamReferenced",
	ParamParamRef:             "ParamParamRef",
	ParamCatch:                "ParamCatch",
	SwitchDefault:             "SwitchDefault",
	TypeModulo:                "TypeModulo",
	VariableConst:             "VariableConst",
	VariableFinal:             "VariableFinal",
	VariableLocal:             "VariableLocal",
	VariableMember:            "VariableMember",
	VariableAttributes:        "VariableAttributes",
	VariableEnum:              "VariableEnum",
	VariableCompiled:          "VariableCompiled",
	VariableInUse:             "VariableInUse",
	VariableDefined:           "VariableDefined",
	VariableDefining:          "VariableDefining",
	VariableToAdd:             "VariableToAdd",
	VariableTemporary:         "VariableTemporary",
}

func (f Flag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}
	return "Flag(?)"
}

// flagKinds lists, for each flag, the kinds it may be set on. A flag absent
// from this table (there are none today) would be rejected for every kind.
var flagKinds = map[Flag]map[Kind]bool{
	CatchTyped:                {Catch: true},
	DirectiveListNewVariables: {DirectiveList: true},
	ForConst:                  {For: true},
	ForForeach:                {For: true},
	ForIn:                     {For: true},
	FunctionGetter:            {Function: true},
	FunctionSetter:            {Function: true},
	FunctionOut:               {Function: true},
	FunctionVoid:              {Function: true},
	FunctionNever:             {Function: true},
	FunctionNoParams:          {Function: true},
	FunctionOperator:          {Function: true},
	IdentifierWith:            {Identifier: true, VIdentifier: true, Class: true, String: true},
	IdentifierTyped:           {Identifier: true, VIdentifier: true},
	IdentifierOperator:        {Identifier: true, VIdentifier: true},
	ParamConst:                {Param: true},
	ParamIn:                   {Param: true},
	ParamOut:                  {Param: true},
	ParamNamed:                {Param: true},
	ParamRest:                 {Param: true},
	ParamUnchecked:            {Param: true},
	ParamUnprototyped:         {Param: true, ParamMatch: true},
	ParamReferenced:           {Param: true},
	ParamParamRef:             {Param: true},
	ParamCatch:                {Param: true},
	SwitchDefault:             {Switch: true},
	TypeModulo:                {Type: true},
	VariableConst:             {Variable: true, Var: true},
	VariableFinal:             {Variable: true, Var: true},
	VariableLocal:             {Variable: true, Var: true},
	VariableMember:            {Variable: true, Var: true},
	VariableAttributes:        {Variable: true, Var: true},
	VariableEnum:              {Variable: true, Var: true},
	VariableCompiled:          {Variable: true, Var: true},
	VariableInUse:             {Variable: true, Var: true},
	VariableDefined:           {Variable: true, Var: true},
	VariableDefining:          {Variable: true, Var: true},
	VariableToAdd:             {Variable: true, Var: true},
	VariableTemporary:         {Variable: true, Var: true},
}

// ValidOn reports whether f may be set on a node of kind k.
func (f Flag) ValidOn(k Kind) bool {
	kinds, ok := flagKinds[f]
	if !ok {
		return false
	}
	return kinds[k]
}
