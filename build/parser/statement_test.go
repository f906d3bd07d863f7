package parser

import "testing"

func TestParseStatements(t *testing.T) {
	runShapeTests(t, []shapeTest{
		{"x = 1", "File(AssignmentStatement(TargetExpression[x] IntegerLiteral[1]))"},
		{"x += 1", "File(AugmentedAssignmentStatement(ReferenceExpression[x] IntegerLiteral[1]))"},
		{"a, b = 1, 2", "File(AssignmentStatement(TupleExpression(ReferenceExpression[a] TargetExpression[b]) TupleExpression(IntegerLiteral[1] IntegerLiteral[2])))"},
		{"x = a if b else c", "File(AssignmentStatement(TargetExpression[x] ReferenceExpression[a] ReferenceExpression[b] ReferenceExpression[c]))"},
		{"x = -1", "File(AssignmentStatement(TargetExpression[x] PositionalArgument(IntegerLiteral[1])))"},
		{"x = 1; y = 2\n", "File(AssignmentStatement(TargetExpression[x] IntegerLiteral[1]) AssignmentStatement(TargetExpression[y] IntegerLiteral[2]))"},
		{"break\ncontinue\n", "File(FlowStatement[break] FlowStatement[continue])"},
		{"pass", "File(PassStatement[pass])"},
		{"for x in y: pass", "File(ForStatement(TargetExpression[x] ReferenceExpression[y] PassStatement[pass]))"},
		{
			"for k, v in d.items():\n  print(k)\n",
			"File(ForStatement(ListLiteral(ReferenceExpression[k] TargetExpression[v]) " +
				"FuncallExpression(ReferenceExpression[d] ReferenceExpression[items] ArgumentList) " +
				"StatementList(FuncallExpression(ReferenceExpression[print] ArgumentList(PositionalArgument(ReferenceExpression[k]))))))",
		},
		{
			"if a:\n  pass\nelif b:\n  return\nelse:\n  x = 1\n",
			"File(IfStatement(IfPart(ReferenceExpression[a] StatementList(PassStatement[pass])) " +
				"ElseIfPart(ReferenceExpression[b] StatementList(ReturnStatement[return])) " +
				"ElsePart(StatementList(AssignmentStatement(TargetExpression[x] IntegerLiteral[1])))))",
		},
		{"if x: return y", "File(IfStatement(IfPart(ReferenceExpression[x] ReturnStatement(ReferenceExpression[y]))))"},
		{
			"def f(a, b = 1, *args, **kwargs):\n  return a\n",
			"File(FunctionStatement(ParameterList(MandatoryParameter[a] OptionalParameter(IntegerLiteral[1]) " +
				"StarParameter[* args] StarStarParameter[** kwargs]) StatementList(ReturnStatement(ReferenceExpression[a]))))",
		},
		{"def f(*, a): pass", "File(FunctionStatement(ParameterList(StarParameter[*] MandatoryParameter[a]) PassStatement[pass]))"},
		{
			"def f():\n  return a, b\n",
			"File(FunctionStatement(ParameterList StatementList(ReturnStatement(TupleExpression(ReferenceExpression[a] ReferenceExpression[b])))))",
		},
		{
			"def f():\n  if x:\n    pass\n  y()\n",
			"File(FunctionStatement(ParameterList StatementList(IfStatement(IfPart(ReferenceExpression[x] StatementList(PassStatement[pass]))) " +
				"FuncallExpression(ReferenceExpression[y] ArgumentList))))",
		},
		{"# only a comment\n", "File"},
	})
}

func TestParseLoad(t *testing.T) {
	f := Parse([]byte(`load("//foo:bar.bzl", "baz", qux = "quux")`))
	if len(f.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", messages(f.Errors))
	}
	load := f.Root.FirstChildOfKind(KindLoadStatement)
	if load == nil {
		t.Fatalf("missing LoadStatement in:\n%s", f.Root)
	}
	module := load.FirstChildOfKind(KindStringLiteral)
	if module == nil || module.Text() != `"//foo:bar.bzl"` {
		t.Errorf("got module %v", module)
	}
	symbols := load.ChildrenOfKind(KindLoadedSymbol)
	if len(symbols) != 2 {
		t.Fatalf("got %d loaded symbols, want 2", len(symbols))
	}
	if got := symbols[0].FirstChildOfKind(KindStringLiteral).Text(); got != `"baz"` {
		t.Errorf("got first symbol %s", got)
	}
	alias := symbols[1].FirstChildOfKind(KindAssignmentStatement)
	if alias == nil {
		t.Fatalf("second symbol is not an alias:\n%s", symbols[1])
	}
	if got := alias.FirstChildOfKind(KindTargetExpression).Text(); got != "qux" {
		t.Errorf("got alias name %q, want qux", got)
	}
	if got := alias.FirstChildOfKind(KindStringLiteral).Text(); got != `"quux"` {
		t.Errorf("got alias value %s", got)
	}
}

func TestParseStatementErrors(t *testing.T) {
	runErrorTests(t, []errorTest{
		{
			"while x: pass",
			"File(Error)",
			[]string{"'while' not supported, use 'for' instead"},
		},
		{
			"while x:\n  y = 1\n",
			"File(Error StatementList(AssignmentStatement(TargetExpression[y] IntegerLiteral[1])))",
			[]string{"'while' not supported, use 'for' instead"},
		},
		{
			"def f():\n  import foo\n  pass\n",
			"File(FunctionStatement(ParameterList StatementList(Error PassStatement[pass])))",
			[]string{"'import' not supported, use 'load' instead"},
		},
		{
			"load('a')",
			"File(LoadStatement(StringLiteral['a'] Error))",
			[]string{"'load' statement requires at least one symbol to load"},
		},
		{
			"if x:\npass\n",
			"File(IfStatement(IfPart(ReferenceExpression[x] StatementList(Error))) PassStatement[pass])",
			[]string{"'indent' expected"},
		},
		{
			"  x = 1\n",
			"File(Error(AssignmentStatement(TargetExpression[x] IntegerLiteral[1])))",
			[]string{"unexpected indentation"},
		},
		{
			"def f(a b): pass",
			"File(FunctionStatement(ParameterList(MandatoryParameter[a] Error MandatoryParameter[b]) PassStatement[pass]))",
			[]string{"',' expected"},
		},
		{
			"x = 1 2\ny = 3\n",
			"File(AssignmentStatement(TargetExpression[x] IntegerLiteral[1]) Error AssignmentStatement(TargetExpression[y] IntegerLiteral[3]))",
			[]string{"'newline' expected"},
		},
	})
}

func TestParseUnexpectedIndentKeepsErrorSpan(t *testing.T) {
	f := Parse([]byte("x = 1\n    y = 2\nz = 3\n"))
	if len(f.Errors) != 1 {
		t.Fatalf("got %v, want one error", messages(f.Errors))
	}
	span := f.Errors[0].Span
	if span.Start.Line != 2 || span.End.Line != 3 {
		t.Errorf("got span %s-%s, want it to cover line 2", span.Start.lineColumn(), span.End.lineColumn())
	}
	if len(f.Root.ChildrenOfKind(KindAssignmentStatement)) != 2 {
		t.Errorf("statements around the block were lost:\n%s", f.Root)
	}
}
