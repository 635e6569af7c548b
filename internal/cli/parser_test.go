package cli

import (
	"reflect"
	"testing"
)

func TestParseLineArgsAndFlags(t *testing.T) {
	line, err := ParseLine(`surface 2024-06-21 --res=30 --cmap=viridis -grid`)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}

	wantArgs := []string{"surface", "2024-06-21"}
	if !reflect.DeepEqual(line.Args, wantArgs) {
		t.Fatalf("args: got %v, want %v", line.Args, wantArgs)
	}
	if got := line.Flag("res", ""); got != "30" {
		t.Fatalf("res flag: %q", got)
	}
	if got := line.Flag("cmap", "jet"); got != "viridis" {
		t.Fatalf("cmap flag: %q", got)
	}
	if !line.Switch("grid") {
		t.Fatal("grid switch not set")
	}
	if line.Switch("legend") {
		t.Fatal("unset switch reported true")
	}
}

func TestParseLineQuotedTokens(t *testing.T) {
	line, err := ParseLine(`export "my file" --title='vol surface'`)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if len(line.Args) != 2 || line.Args[1] != "my file" {
		t.Fatalf("quoted arg not grouped: %v", line.Args)
	}
	if got := line.Flag("title", ""); got != "vol surface" {
		t.Fatalf("quoted flag value: %q", got)
	}
}

func TestParseLineUnterminatedQuote(t *testing.T) {
	if _, err := ParseLine(`export "oops`); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

func TestParseLineNegativeNumberIsArg(t *testing.T) {
	line, err := ParseLine(`config iv_surface_range -0.5`)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if len(line.Args) != 3 || line.Args[2] != "-0.5" {
		t.Fatalf("negative number should stay positional: %v", line.Args)
	}
}

func TestIntAndFloatFlags(t *testing.T) {
	line, err := ParseLine(`surface --res=40 --range=0.3`)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}

	res, err := line.IntFlag("res", 25)
	if err != nil || res != 40 {
		t.Fatalf("IntFlag: %d, %v", res, err)
	}
	rng, err := line.FloatFlag("range", 0.2)
	if err != nil || rng != 0.3 {
		t.Fatalf("FloatFlag: %v, %v", rng, err)
	}

	missing, err := line.IntFlag("depth", 7)
	if err != nil || missing != 7 {
		t.Fatalf("missing flag default: %d, %v", missing, err)
	}

	bad, _ := ParseLine(`surface --res=abc`)
	if _, err := bad.IntFlag("res", 25); err == nil {
		t.Fatal("expected parse error for non-integer flag")
	}
}

func TestIsDate(t *testing.T) {
	if !IsDate("2024-03-15") {
		t.Fatal("valid date rejected")
	}
	if IsDate("1y") || IsDate("2024-13-01") || IsDate("15-03-2024") {
		t.Fatal("invalid date accepted")
	}
}

func TestTypeEval(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"0.25", 0.25},
		{"true", true},
		{"False", false},
		{"none", nil},
		{"jet", "jet"},
		{"[]", []any{}},
		{"[5, 10, 20]", []any{int64(5), int64(10), int64(20)}},
	}
	for _, tc := range cases {
		got := TypeEval(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("TypeEval(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}
