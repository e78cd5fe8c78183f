package taxid

import "testing"

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid", "52998224725", true},
		{"valid second", "11144477735", true},
		{"valid third", "93541134780", true},
		{"empty", "", false},
		{"letters", "abc", false},
		{"all zeros", "00000000000", false},
		{"all nines", "99999999999", false},
		{"sequential base", "12345678909", true},
		{"formatted", "529.982.247-25", false},
		{"too short", "5299822472", false},
		{"too long", "529982247250", false},
		{"letter inside", "5299822472a", false},
		{"unicode digit", "５2998224725", false},
		{"wrong first check digit", "52998224735", false},
		{"wrong second check digit", "52998224726", false},
		{"check digits transposed", "52998224752", false},
		{"base transposed", "52989224725", false},
		{"leading digits transposed", "25998224725", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.input); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidDeterministic(t *testing.T) {
	for range 100 {
		if !IsValid("52998224725") {
			t.Fatal("same input must always validate")
		}
	}
}

func TestSingleDigitChangeRejected(t *testing.T) {
	valid := "52998224725"
	for i := 0; i < Length; i++ {
		for d := byte('0'); d <= '9'; d++ {
			if valid[i] == d {
				continue
			}
			mutated := valid[:i] + string(d) + valid[i+1:]
			if IsValid(mutated) {
				t.Errorf("mutation %q at position %d should be invalid", mutated, i)
			}
		}
	}
}

func TestCheckDigits(t *testing.T) {
	d1, d2 := CheckDigits("529982247")
	if d1 != 2 || d2 != 5 {
		t.Errorf("CheckDigits = %d, %d, want 2, 5", d1, d2)
	}
}

func TestStrip(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"529.982.247-25", "52998224725"},
		{" 529 982 247 25 ", "52998224725"},
		{"52998224725", "52998224725"},
		{"abc.def", "abcdef"},
	}

	for _, tt := range tests {
		if got := Strip(tt.input); got != tt.want {
			t.Errorf("Strip(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format("52998224725"); got != "529.982.247-25" {
		t.Errorf("Format = %q", got)
	}
	if got := Format("123"); got != "123" {
		t.Errorf("short input should be unchanged, got %q", got)
	}
}

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		cpf := Generate()
		if !IsValid(cpf) {
			t.Fatalf("generated cpf %q is invalid", cpf)
		}
		seen[cpf] = true
	}
	if len(seen) < 2 {
		t.Error("generate should produce varied output")
	}
}
