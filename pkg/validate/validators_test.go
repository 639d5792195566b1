package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEmail(t *testing.T) {
	assert.Equal(t, "jane.doe@example.edu", CanonicalizeEmail("  Jane.Doe@Example.EDU "))
	assert.Equal(t, "info@example.com", CanonicalizeEmail("info@example.com"))
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{"simple", "a@b.co", true},
		{"typical", "jane.doe@example.edu", true},
		{"plus tag", "jane+news@example.com", true},
		{"subdomain", "jane@mail.example.com", true},
		{"hyphen domain", "jane@my-site.org", true},

		{"too short", "a@b.", false},
		{"one char tld", "a@b.c", false},
		{"digit tld", "jane@example.c3", false},
		{"no at", "jane.example.com", false},
		{"two ats", "jane@@example.com", false},
		{"empty local", "@example.com", false},
		{"empty domain", "jane@", false},
		{"no domain dot", "jane@example", false},
		{"double dot", "jane..doe@example.com", false},
		{"leading dot", ".jane@example.com", false},
		{"trailing dot", "jane@example.com.", false},
		{"local trailing dot", "jane.@example.com", false},
		{"domain leading dot", "jane@.example.com", false},
		{"leading hyphen", "-jane@example.com", false},
		{"leading underscore", "_jane@example.com", false},
		{"trailing hyphen", "jane@example.com-", false},
		{"overlong local", strings.Repeat("a", 65) + "@example.com", false},
		{"overlong total", strings.Repeat("a", 250) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.email), "IsValidEmail(%q)", tt.email)
		})
	}
}

func TestIsValidEmail_IdempotentWithCanonicalize(t *testing.T) {
	// Any accepted address must still be accepted after canonicalization.
	accepted := []string{
		"Jane.Doe@Example.EDU",
		"info@example.com",
		"a.b-c_d@sub.example.co",
	}
	for _, email := range accepted {
		require.True(t, IsValidEmail(email), "precondition: %q", email)
		assert.True(t, IsValidEmail(CanonicalizeEmail(email)), "canonicalized %q", email)
	}
}

func TestIsPlausibleName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"two tokens", "Jane Doe", true},
		{"three tokens", "Jane Marie Doe", true},
		{"four tokens", "Jane Marie Anne Doe", true},

		{"single token", "Jane", false},
		{"five tokens", "One Two Three Four Five", false},
		{"lowercase first", "jane Doe", false},
		{"digit in token", "Jane Doe3", false},
		{"role word", "Email Support", false},
		{"department word", "Jane Office", false},
		{"org word", "Example University", false},
		{"too short", "A B", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPlausibleName(tt.in), "IsPlausibleName(%q)", tt.in)
		})
	}
}

func TestRecognizeTitle(t *testing.T) {
	tests := []struct {
		in        string
		canonical string
		ok        bool
	}{
		{"professor", "Professor", true},
		{"Professor", "Professor", true},
		{"  PROF.  ", "Professor", true},
		{"associate professor", "Associate Professor", true},
		{"dr", "Dr.", true},
		{"Director", "Director", true},

		{"Software Engineer", "", false},
		{"CEO", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		canonical, ok := RecognizeTitle(tt.in)
		assert.Equal(t, tt.ok, ok, "RecognizeTitle(%q) ok", tt.in)
		assert.Equal(t, tt.canonical, canonical, "RecognizeTitle(%q) value", tt.in)
	}
}

func TestIsPlausibleCompany(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Acme Corporation", true},
		{"Example University", true},
		{"Widgets Inc", true},
		{"Globex LLC", true},
		{"Springfield College", true},

		{"Acme", false},
		{"Jane Doe", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPlausibleCompany(tt.in), "IsPlausibleCompany(%q)", tt.in)
	}
}

func TestCompletePhone_RejectsFragments(t *testing.T) {
	fragments := []string{
		"",
		"123",
		"555-1234",   // 7 digits
		"123-456-78", // 8 digits
	}
	for _, span := range fragments {
		_, ok := CompletePhone(span)
		assert.False(t, ok, "CompletePhone(%q)", span)
	}
}

func TestCompletePhone_NormalizesValidNumber(t *testing.T) {
	got, ok := CompletePhone("+1 650-253-0000")
	require.True(t, ok)
	assert.Equal(t, "+1 650-253-0000", got)
}

func TestCompletePhone_KeepsUnparseableSpanCleaned(t *testing.T) {
	// Ten digits passes the completeness gate even when the number library
	// cannot validate it; the span is kept whitespace-cleaned.
	got, ok := CompletePhone("  (555)   123-4567 ")
	require.True(t, ok)
	assert.Equal(t, "(555) 123-4567", got)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a \t b\n\nc  "))
	assert.Equal(t, "", CleanText("   "))
}

func TestTruncateContext(t *testing.T) {
	assert.Equal(t, "short", TruncateContext("short", 10))
	assert.Equal(t, "abcde...", TruncateContext("abcdefghij", 5))
	// Rune-based, not byte-based
	assert.Equal(t, "日本語...", TruncateContext("日本語のテキスト", 3))
}

func TestLetterRatio(t *testing.T) {
	assert.Equal(t, 1.0, LetterRatio("abc def"))
	assert.Equal(t, 0.5, LetterRatio("ab12"))
	assert.Equal(t, 0.0, LetterRatio("1234"))
	assert.Equal(t, 0.0, LetterRatio(""))
}
