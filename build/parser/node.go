package parser

import "strings"

type NodeKind int

const (
	KindError NodeKind = iota
	KindToken
	KindFile

	// Expressions
	KindTupleExpression
	KindListLiteral
	KindDictLiteral
	KindDictEntry
	KindBinaryOpExpression
	KindNotExpression
	KindParenthesizedExpression
	KindDotExpression
	KindFuncallExpression
	KindGlobExpression
	KindTargetExpression
	KindReferenceExpression
	KindStringLiteral
	KindIntegerLiteral
	KindListComprehension
	KindDictComprehension

	// Call arguments
	KindPositionalArgument
	KindKeywordArgument
	KindStarArgument
	KindStarStarArgument
	KindArgumentList

	// Function parameters
	KindMandatoryParameter
	KindOptionalParameter
	KindStarParameter
	KindStarStarParameter
	KindParameterList

	// Statements
	KindAssignmentStatement
	KindAugmentedAssignmentStatement
	KindIfPart
	KindElseIfPart
	KindElsePart
	KindIfStatement
	KindForStatement
	KindReturnStatement
	KindFlowStatement
	KindPassStatement
	KindFunctionStatement
	KindLoadStatement
	KindLoadedSymbol
	KindStatementList
)

var nodeKindNames = map[NodeKind]string{
	KindError:                        "Error",
	KindToken:                        "Token",
	KindFile:                         "File",
	KindTupleExpression:              "TupleExpression",
	KindListLiteral:                  "ListLiteral",
	KindDictLiteral:                  "DictLiteral",
	KindDictEntry:                    "DictEntry",
	KindBinaryOpExpression:           "BinaryOpExpression",
	KindNotExpression:                "NotExpression",
	KindParenthesizedExpression:      "ParenthesizedExpression",
	KindDotExpression:                "DotExpression",
	KindFuncallExpression:            "FuncallExpression",
	KindGlobExpression:               "GlobExpression",
	KindTargetExpression:             "TargetExpression",
	KindReferenceExpression:          "ReferenceExpression",
	KindStringLiteral:                "StringLiteral",
	KindIntegerLiteral:               "IntegerLiteral",
	KindListComprehension:            "ListComprehension",
	KindDictComprehension:            "DictComprehension",
	KindPositionalArgument:           "PositionalArgument",
	KindKeywordArgument:              "KeywordArgument",
	KindStarArgument:                 "StarArgument",
	KindStarStarArgument:             "StarStarArgument",
	KindArgumentList:                 "ArgumentList",
	KindMandatoryParameter:           "MandatoryParameter",
	KindOptionalParameter:            "OptionalParameter",
	KindStarParameter:                "StarParameter",
	KindStarStarParameter:            "StarStarParameter",
	KindParameterList:                "ParameterList",
	KindAssignmentStatement:          "AssignmentStatement",
	KindAugmentedAssignmentStatement: "AugmentedAssignmentStatement",
	KindIfPart:                       "IfPart",
	KindElseIfPart:                   "ElseIfPart",
	KindElsePart:                     "ElsePart",
	KindIfStatement:                  "IfStatement",
	KindForStatement:                 "ForStatement",
	KindReturnStatement:              "ReturnStatement",
	KindFlowStatement:                "FlowStatement",
	KindPassStatement:                "PassStatement",
	KindFunctionStatement:            "FunctionStatement",
	KindLoadStatement:                "LoadStatement",
	KindLoadedSymbol:                 "LoadedSymbol",
	KindStatementList:                "StatementList",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Error is a syntax error annotation. It never aborts a parse.
type Error struct {
	Message string
	Span    Span
}

func (e *Error) Error() string {
	return e.Span.Start.String() + ": " + e.Message
}

type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Token    *Token
	Error    *Error
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

func (n *Node) IsToken() bool {
	return n.Kind == KindToken
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

// Elements returns the composite children, skipping token leaves and
// error annotations.
func (n *Node) Elements() []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind != KindToken && child.Kind != KindError {
			result = append(result, child)
		}
	}
	return result
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Tokens returns the leaf tokens below n in source order.
func (n *Node) Tokens() []Token {
	var tokens []Token
	n.Walk(func(c *Node) bool {
		if c.Token != nil {
			tokens = append(tokens, *c.Token)
		}
		return true
	})
	return tokens
}

// Text joins the literals of the leaf tokens below n with single spaces.
func (n *Node) Text() string {
	var parts []string
	for _, tok := range n.Tokens() {
		if tok.Literal != "" && tok.Kind != TokenNewline {
			parts = append(parts, tok.Literal)
		}
	}
	return strings.Join(parts, " ")
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

func (n *Node) String() string {
	var b strings.Builder
	n.writeIndent(&b, 0, false)
	return b.String()
}

func (n *Node) StringWithPositions() string {
	var b strings.Builder
	n.writeIndent(&b, 0, true)
	return b.String()
}

func (n *Node) writeIndent(b *strings.Builder, indent int, showPositions bool) {
	b.WriteString(strings.Repeat("  ", indent))
	if n.Token != nil {
		b.WriteString(n.Token.Kind.String())
	} else {
		b.WriteString(n.Kind.String())
	}
	if showPositions {
		b.WriteString(" [" + n.Span.Start.lineColumn() + "-" + n.Span.End.lineColumn() + "]")
	}
	if n.Token != nil && n.Token.Kind != TokenNewline && n.Token.Literal != "" && n.Token.Literal != n.Token.Kind.String() {
		b.WriteString(" " + n.Token.Literal)
	}
	if n.Error != nil {
		b.WriteString(" ERROR: " + n.Error.Message)
	}
	b.WriteString("\n")

	for _, child := range n.Children {
		child.writeIndent(b, indent+1, showPositions)
	}
}
