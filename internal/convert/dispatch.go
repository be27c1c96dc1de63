package convert

import (
	"pyast/internal/ast"
	"pyast/internal/cst"
)

// convertFunc converts one production kind.
type convertFunc func(c *Converter, n *cst.Node) (Result, error)

// converters is the dispatch table. It is filled once at init and only read
// afterwards. Terminal has no entry: tokens are consumed by the converter of
// their parent production.
var converters map[cst.Kind]convertFunc

func init() {
	converters = map[cst.Kind]convertFunc{
		// Module structure
		cst.FileInput:        convertStatements,
		cst.SimpleStatements: convertSimpleStatements,
		cst.Block:            convertStatements,

		// Simple statements
		cst.ExpressionStatement: convertExpressionStatement,
		cst.Assignment:          convertAssignment,
		cst.Annotation:          passThrough,
		cst.Default:             passThrough,
		cst.ReturnStatement:     convertReturn,
		cst.PassStatement:       convertPass,
		cst.BreakStatement:      convertBreak,
		cst.ContinueStatement:   convertContinue,
		cst.RaiseStatement:      markerStatementOf(ast.MarkerRaise),
		cst.GlobalStatement:     nameListOf(ast.MarkerGlobal),
		cst.NonlocalStatement:   nameListOf(ast.MarkerNonlocal),
		cst.DelStatement:        markerStatementOf(ast.MarkerDelete),
		cst.AssertStatement:     markerStatementOf(ast.MarkerAssert),
		cst.ImportName:          convertImportName,
		cst.ImportFrom:          convertImportFrom,
		cst.DottedAsNames:       convertDottedAsNames,
		cst.DottedAsName:        convertDottedAsName,
		cst.DottedName:          convertDottedName,
		cst.ImportFromTargets:   convertImportFromTargets,
		cst.ImportFromAsName:    convertImportFromAsName,
		cst.TypeAlias:           convertTypeAlias,

		// Compound statements
		cst.IfStatement:     convertIf,
		cst.ElifStatement:   convertIf,
		cst.ElseBlock:       convertElse,
		cst.WhileStatement:  convertWhile,
		cst.ForStatement:    convertFor,
		cst.WithStatement:   convertWith,
		cst.WithItem:        convertWithItem,
		cst.TryStatement:    convertTry,
		cst.ExceptBlock:     exceptOf(ast.MarkerExcept),
		cst.ExceptStarBlock: exceptOf(ast.MarkerExceptStar),
		cst.FinallyBlock:    convertFinally,

		// Declarations
		cst.FunctionDef:      convertFunctionDef,
		cst.FunctionDefRaw:   convertFunctionDefRaw,
		cst.ClassDef:         convertClassDef,
		cst.ClassDefRaw:      convertClassDefRaw,
		cst.Decorators:       convertSequenceOf,
		cst.Parameters:       convertParameters,
		cst.Param:            convertParam,
		cst.TypeParams:       convertSequenceOf,
		cst.TypeParam:        convertTypeParam,
		cst.TypeParamBound:   convertTypeParamBound,
		cst.TypeParamDefault: convertTypeParamDefault,

		// Pattern matching
		cst.MatchStatement:    convertMatch,
		cst.SubjectExpr:       convertExpressionList,
		cst.CaseBlock:         convertCaseBlock,
		cst.Guard:             convertGuard,
		cst.Patterns:          convertPatterns,
		cst.AsPattern:         convertAsPattern,
		cst.OrPattern:         convertOrPattern,
		cst.LiteralPattern:    convertLiteralPattern,
		cst.CapturePattern:    convertCapturePattern,
		cst.WildcardPattern:   convertWildcardPattern,
		cst.ValuePattern:      convertValuePattern,
		cst.GroupPattern:      passThrough,
		cst.SequencePattern:   patternOf(ast.OpSequencePattern),
		cst.StarPattern:       convertStarPattern,
		cst.MappingPattern:    patternOf(ast.OpMappingPattern),
		cst.KeyValuePattern:   convertKvpair,
		cst.DoubleStarPattern: convertDoubleStarPattern,
		cst.ClassPattern:      convertClassPattern,
		cst.KeywordPattern:    convertKeywordPattern,

		// Expressions
		cst.StarExpressions:        convertExpressionList,
		cst.StarExpression:         convertStarredItem,
		cst.StarNamedExpressions:   convertSequenceOf,
		cst.StarNamedExpression:    convertStarredItem,
		cst.StarTargets:            convertExpressionList,
		cst.NamedExpression:        passThrough,
		cst.AssignmentExpression:   convertAssignmentExpression,
		cst.Expression:             convertExpression,
		cst.Lambdef:                convertLambdef,
		cst.YieldExpression:        convertYield,
		cst.Disjunction:            convertBinaryChain,
		cst.Conjunction:            convertBinaryChain,
		cst.Inversion:              convertPrefix,
		cst.Comparison:             convertComparison,
		cst.CompareOpBitwiseOrPair: convertComparePair,
		cst.BitwiseOr:              convertBinaryChain,
		cst.BitwiseXor:             convertBinaryChain,
		cst.BitwiseAnd:             convertBinaryChain,
		cst.ShiftExpr:              convertBinaryChain,
		cst.Sum:                    convertBinaryChain,
		cst.Term:                   convertBinaryChain,
		cst.Factor:                 convertPrefix,
		cst.Power:                  convertPower,
		cst.AwaitPrimary:           convertAwait,
		cst.Primary:                convertPrimary,
		cst.Slices:                 convertExpressionList,
		cst.Slice:                  convertSlice,
		cst.Atom:                   convertAtom,

		// Atoms
		cst.Strings:                 convertStrings,
		cst.String:                  convertString,
		cst.FString:                 convertFString,
		cst.FStringReplacementField: convertReplacementField,
		cst.FStringConversion:       convertConversion,
		cst.FStringFormatSpec:       convertFormatSpec,
		cst.Tuple:                   convertTuple,
		cst.Group:                   passThrough,
		cst.List:                    displayOf(ast.OpList),
		cst.Set:                     displayOf(ast.OpSet),
		cst.Dict:                    displayOf(ast.OpDict),
		cst.Kvpair:                  convertKvpair,
		cst.DoubleStarredKvpair:     convertDoubleStarred,
		cst.Listcomp:                comprehensionOf(ast.OpListComprehension),
		cst.Setcomp:                 comprehensionOf(ast.OpSetComprehension),
		cst.Dictcomp:                comprehensionOf(ast.OpDictComprehension),
		cst.Genexp:                  comprehensionOf(ast.OpGeneratorExpression),
		cst.ForIfClauses:            convertSequenceOf,
		cst.ForIfClause:             convertForIfClause,

		// Call arguments
		cst.Arguments:               convertSequenceOf,
		cst.StarredExpression:       convertStarredItem,
		cst.KeywordArgument:         convertKeywordArgument,
		cst.DoubleStarredExpression: convertDoubleStarred,
	}
}

// registered reports whether kind has a converter.
func registered(kind cst.Kind) bool {
	_, ok := converters[kind]
	return ok
}
