package scanner_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hackworks/n2t-toolchain/internal/scanner"
	"github.com/hackworks/n2t-toolchain/internal/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestScanBasicInstruction(t *testing.T) {
	tokens, err := scanner.New("@2\nD=A\n").Scan()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	want := []token.Kind{
		token.At, token.Number, token.LineBreak,
		token.Identifier, token.Equal, token.Identifier, token.LineBreak,
		token.EOF,
	}
	if diff := cmp.Diff(want, kinds(tokens)); diff != "" {
		t.Fatalf("unexpected token kinds (-want +got):\n%s", diff)
	}
}

func TestScanLineComments(t *testing.T) {
	tokens, err := scanner.New("// a comment\n@1 // trailing\n").Scan()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []token.Kind{token.LineBreak, token.At, token.Number, token.LineBreak, token.EOF}
	if diff := cmp.Diff(want, kinds(tokens)); diff != "" {
		t.Fatalf("unexpected token kinds (-want +got):\n%s", diff)
	}
}

func TestScanIdentifierCharset(t *testing.T) {
	tokens, err := scanner.New("@Foo.Bar_Baz$1").Scan()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if tokens[1].Kind != token.Identifier || tokens[1].Lexeme != "Foo.Bar_Baz$1" {
		t.Fatalf("unexpected identifier token: %+v", tokens[1])
	}
}

func TestScanNumberOverflowIsScanError(t *testing.T) {
	_, err := scanner.New("@70000").Scan()
	if err == nil {
		t.Fatal("expected a scan error for an overflowing numeric literal")
	}
}

func TestScanUnexpectedCharacterIsScanError(t *testing.T) {
	_, err := scanner.New("@1 % 2").Scan()
	if err == nil {
		t.Fatal("expected a scan error for an unrecognized byte")
	}
}

func TestScanTracksLineNumbers(t *testing.T) {
	tokens, err := scanner.New("@1\n@2\n@3").Scan()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	var lines []int
	for _, tk := range tokens {
		if tk.Kind == token.Number {
			lines = append(lines, tk.Line)
		}
	}
	if diff := cmp.Diff([]int{1, 2, 3}, lines); diff != "" {
		t.Fatalf("unexpected line numbers (-want +got):\n%s", diff)
	}
}
