package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `var x = 5 + 10;
if (x == 15) { return true; } else { return false; }
func add(a, b) { return a + b; }
"hi" 'raw' ?? ??= <=> <<< >>> &&`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{VAR, "var"},
		{IDENT, "x"},
		{ASSIGN, "="},
		{INT, "5"},
		{PLUS, "+"},
		{INT, "10"},
		{SEMICOLON, ";"},
		{IF, "if"},
		{LPAREN, "("},
		{IDENT, "x"},
		{EQEQ, "=="},
		{INT, "15"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{RETURN, "return"},
		{TRUEKW, "true"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{ELSE, "else"},
		{LBRACE, "{"},
		{RETURN, "return"},
		{FALSEKW, "false"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{FUNC, "func"},
		{IDENT, "add"},
		{LPAREN, "("},
		{IDENT, "a"},
		{COMMA, ","},
		{IDENT, "b"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{RETURN, "return"},
		{IDENT, "a"},
		{PLUS, "+"},
		{IDENT, "b"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{STRING, "hiraw"},
		{QQ, "??"},
		{QQ_ASSIGN, "??="},
		{SPACESHIP, "<=>"},
		{USHL, "<<<"},
		{USHR, ">>>"},
		{ANDAND, "&&"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("test[%d] - tokentype wrong. expected=%s, got=%s (literal %q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("test[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestAdjacentStringConcatenation(t *testing.T) {
	l := New(`"hello, " 'world' "!"`)
	tok := l.NextToken()
	if tok.Type != STRING || tok.Literal != "hello, world!" {
		t.Fatalf("expected concatenated string, got %q", tok.Literal)
	}
	if eof := l.NextToken(); eof.Type != EOF {
		t.Fatalf("expected EOF after concatenated literal, got %s", eof.Type)
	}
}

func TestDoubleQuotedEscapes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`"\n"`, "\n"},
		{`"\t"`, "\t"},
		{`"\\"`, "\\"},
		{`"\""`, "\""},
		{`"\x41"`, "A"},
		{`"A"`, "A"},
		{`"\U00000041"`, "A"},
	}
	for _, tt := range tests {
		l := New(tt.src)
		tok := l.NextToken()
		if tok.Type != STRING || tok.Literal != tt.want {
			t.Fatalf("src %q: expected %q, got type=%s literal=%q", tt.src, tt.want, tok.Type, tok.Literal)
		}
	}
}

func TestSingleQuotedIsRaw(t *testing.T) {
	l := New(`'a\nb'`)
	tok := l.NextToken()
	if tok.Literal != `a\nb` {
		t.Fatalf("expected raw literal a\\nb, got %q", tok.Literal)
	}
}

func TestSurrogateEscapeRejected(t *testing.T) {
	l := New(`"\uD800"`)
	_ = l.NextToken()
	if len(l.Errors()) == 0 {
		t.Fatal("expected an error for a surrogate code point escape")
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want TokenType
	}{
		{"123", INT},
		{"0x1F", INT},
		{"0b1010", INT},
		{"1_000_000", INT},
		{"1.5", FLOAT},
		{"1e10", FLOAT},
		{"1.5e-3", FLOAT},
	}
	for _, tt := range tests {
		l := New(tt.src)
		tok := l.NextToken()
		if tok.Type != tt.want {
			t.Fatalf("src %q: expected %s, got %s", tt.src, tt.want, tok.Type)
		}
	}
}

func TestComments(t *testing.T) {
	l := New("1 // line comment\n2 /* block\ncomment */ 3")
	var got []string
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		got = append(got, tok.Literal)
	}
	want := []string{"1", "2", "3"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New("1 2 3")
	if tok := l.Peek(1); tok.Literal != "2" {
		t.Fatalf("Peek(1) expected 2, got %q", tok.Literal)
	}
	if tok := l.NextToken(); tok.Literal != "1" {
		t.Fatalf("NextToken expected 1, got %q", tok.Literal)
	}
	if tok := l.NextToken(); tok.Literal != "2" {
		t.Fatalf("NextToken expected 2, got %q", tok.Literal)
	}
}

func TestSaveRestoreState(t *testing.T) {
	l := New("1 2 3")
	_ = l.NextToken()
	state := l.SaveState()
	_ = l.NextToken()
	l.RestoreState(state)
	if tok := l.NextToken(); tok.Literal != "2" {
		t.Fatalf("expected restored position to re-read 2, got %q", tok.Literal)
	}
}

func TestBOMStripped(t *testing.T) {
	l := New("\xEF\xBB\xBFvar x = 1;")
	if tok := l.NextToken(); tok.Type != VAR {
		t.Fatalf("expected var after BOM strip, got %s", tok.Type)
	}
}

func TestShebangSkipped(t *testing.T) {
	l := New("#!/usr/bin/env scriptcore\nvar x = 1;")
	if tok := l.NextToken(); tok.Type != VAR {
		t.Fatalf("expected var after shebang skip, got %s", tok.Type)
	}
}

func TestIllegalUTF8(t *testing.T) {
	l := New("var x = \xff;")
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
	}
	if len(l.Errors()) == 0 {
		t.Fatal("expected an invalid UTF-8 error")
	}
}

func TestUnicodeIdentifierColumns(t *testing.T) {
	l := New("var Δ = 1;")
	_ = l.NextToken() // var
	tok := l.NextToken()
	if tok.Literal != "Δ" {
		t.Fatalf("expected Δ identifier, got %q", tok.Literal)
	}
}
