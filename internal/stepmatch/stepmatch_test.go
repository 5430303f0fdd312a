package stepmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_UntypedField(t *testing.T) {
	m := MustCompile(Parse, "a {word} thing")
	assert.True(t, m.Match("a red thing"))
	assert.True(t, m.Match("a very red thing"))
	assert.False(t, m.Match("a thing"))
	assert.False(t, m.Match("a red thing indeed"))
}

func TestParse_Literal(t *testing.T) {
	m := MustCompile(Parse, "a user (admin) exists?")
	assert.True(t, m.Match("a user (admin) exists?"))
	assert.False(t, m.Match("a user admin exists"))
}

func TestParse_CaseInsensitive(t *testing.T) {
	m := MustCompile(Parse, "the user logs in")
	assert.True(t, m.Match("The User logs IN"))
}

func TestParse_AnonymousFields(t *testing.T) {
	m := MustCompile(Parse, "{} plus {} is {}")
	assert.True(t, m.Match("1 plus 2 is 3"))
}

func TestParse_IntegerType(t *testing.T) {
	m := MustCompile(Parse, "there are {count:d} cucumbers")
	assert.True(t, m.Match("there are 12 cucumbers"))
	assert.True(t, m.Match("there are -3 cucumbers"))
	assert.False(t, m.Match("there are twelve cucumbers"))
}

func TestParse_FloatAndWordTypes(t *testing.T) {
	m := MustCompile(Parse, "{name:w} pays {amount:f}")
	assert.True(t, m.Match("alice pays 3.50"))
	assert.False(t, m.Match("alice smith pays 3.50"))
	assert.False(t, m.Match("alice pays 3"))
}

func TestParse_WidthInSpec(t *testing.T) {
	m := MustCompile(Parse, "code {:>3d}")
	assert.True(t, m.Match("code 42"))
	assert.False(t, m.Match("code x"))
}

func TestParse_CustomTypeMatchesAnything(t *testing.T) {
	m := MustCompile(Parse, "I pick {color:Color}")
	assert.True(t, m.Match("I pick dark blue"))
}

func TestParse_EscapedBraces(t *testing.T) {
	m := MustCompile(Parse, "the json {{}} is {state}")
	assert.True(t, m.Match("the json {} is empty"))
	assert.False(t, m.Match("the json x is empty"))
}

func TestParse_RepeatedNameMustBeEqual(t *testing.T) {
	m := MustCompile(Parse, "{x:d} equals {x:d}")
	assert.True(t, m.Match("4 equals 4"))
	assert.False(t, m.Match("4 equals 5"))
}

func TestParse_RepeatedNameSpanningWords(t *testing.T) {
	m := MustCompile(Parse, "{a} and {a}")
	assert.True(t, m.Match("x and y and x and y"))
	assert.True(t, m.Match("Red Box and red box"))
	assert.False(t, m.Match("x and y and x and z"))

	typed := MustCompile(Parse, "{n:d} of {item} then {n:d} of {item}")
	assert.True(t, typed.Match("2 of big and small then 2 of big and small"))
	assert.False(t, typed.Match("2 of big and small then 3 of big and small"))
}

func TestParse_MultilineText(t *testing.T) {
	m := MustCompile(Parse, "a {text}")
	assert.True(t, m.Match("a first\nsecond"))
}

func TestParse_Unclosed(t *testing.T) {
	_, err := Compile(Parse, "a {broken thing")
	require.Error(t, err)
}

func TestRegex_AnchoredAtStart(t *testing.T) {
	m := MustCompile(Regex, `a (?P<color>\w+) thing`)
	assert.True(t, m.Match("a red thing"))
	assert.True(t, m.Match("a red thing with more"))
	assert.False(t, m.Match("there is a red thing"))
}

func TestRegex_Invalid(t *testing.T) {
	_, err := Compile(Regex, `a (?<=look) behind`)
	require.Error(t, err)
}

func TestCompile_CFParseIsParse(t *testing.T) {
	m := MustCompile(CFParse, "a {word} thing")
	assert.True(t, m.Match("a red thing"))
	assert.Equal(t, "a {word} thing", m.Pattern())
}

func TestNormalize(t *testing.T) {
	name, err := Normalize("RE")
	require.NoError(t, err)
	assert.Equal(t, Regex, name)

	name, err = Normalize("")
	require.NoError(t, err)
	assert.Equal(t, Parse, name)

	_, err = Normalize("fancy")
	require.Error(t, err)
}
