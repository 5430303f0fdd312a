package pyscan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/stepjump/internal/step"
	"github.com/chriserin/stepjump/internal/stepmatch"
)

const stepsModule = `from behave import given, when, then, step


def helper():
    pass


@given("a thing")
def step_a_thing(context):
    context.thing = True


@when('the user says "{phrase}"')
def step_says(context, phrase):
    pass


@then(u"it works")
@step("it really works")
def step_works(context):
    assert True


@fixture
def not_a_step(context):
    pass


@given(pattern)
def dynamic(context):
    pass
`

func TestScan_FindsStepDecorators(t *testing.T) {
	locs, err := Scan(context.Background(), []byte(stepsModule))
	require.NoError(t, err)
	require.Len(t, locs, 4)

	assert.Equal(t, step.Location{Kind: step.Given, Desc: "@given(a thing)", Text: "a thing", Line: 8}, locs[0])
	assert.Equal(t, step.When, locs[1].Kind)
	assert.Equal(t, `the user says "{phrase}"`, locs[1].Text)
	assert.Equal(t, 13, locs[1].Line)
	assert.Equal(t, step.Then, locs[2].Kind)
	assert.Equal(t, 18, locs[2].Line)
	assert.Equal(t, step.Step, locs[3].Kind)
	assert.Equal(t, 19, locs[3].Line)
}

func TestLatestBefore_GoverningDecorator(t *testing.T) {
	src := []byte("from behave import given\n\n\n\n\n\n\n\n\n" +
		"@given(\"a thing\")\n" +
		"def step_impl(context):\n" +
		"    pass\n")
	locs, err := Scan(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	require.Equal(t, 10, locs[0].Line)

	got, ok := LatestBefore(locs, 15)
	require.True(t, ok)
	assert.Equal(t, "a thing", got.Text)

	_, ok = LatestBefore(locs, 5)
	assert.False(t, ok)

	got, ok = LatestBefore(locs, 10)
	require.True(t, ok)
	assert.Equal(t, 10, got.Line)
}

func TestLatestBefore_PicksClosestPreceding(t *testing.T) {
	locs, err := Scan(context.Background(), []byte(stepsModule))
	require.NoError(t, err)

	got, ok := LatestBefore(locs, 15)
	require.True(t, ok)
	assert.Equal(t, step.When, got.Kind)
}

func TestScan_IgnoresNestedFunctions(t *testing.T) {
	src := []byte(`class Steps:
    @given("inside a class")
    def method(self):
        pass


def outer():
    @given("nested")
    def inner(context):
        pass
`)
	locs, err := Scan(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestScan_AsyncFunction(t *testing.T) {
	src := []byte(`@when("it waits")
async def step_waits(context):
    pass
`)
	locs, err := Scan(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "it waits", locs[0].Text)
}

func TestScan_KeywordOnlyArgumentIsNotAPattern(t *testing.T) {
	src := []byte(`@given(pattern="a thing")
def step_impl(context):
    pass
`)
	locs, err := Scan(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestScan_StringForms(t *testing.T) {
	src := []byte(`@given("a " "joined" ' pattern')
def one(context):
    pass


@given(r"raw \d+ digits")
def two(context):
    pass


@given("tab\there")
def three(context):
    pass


@given("""triple {x}""")
def four(context):
    pass
`)
	locs, err := Scan(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, locs, 4)
	assert.Equal(t, "a joined pattern", locs[0].Text)
	assert.Equal(t, `raw \d+ digits`, locs[1].Text)
	assert.Equal(t, "tab\there", locs[2].Text)
	assert.Equal(t, "triple {x}", locs[3].Text)
}

func TestScan_SyntaxErrorsAreTolerated(t *testing.T) {
	src := []byte(`@given("before the error")
def ok(context):
    pass

def broken(:
`)
	locs, err := Scan(context.Background(), src)
	require.NoError(t, err)
	require.NotEmpty(t, locs)
	assert.Equal(t, "before the error", locs[0].Text)
}

func TestDefinitions_UseStepMatcher(t *testing.T) {
	src := []byte(`from behave import given, use_step_matcher

@given("parsed {x}")
def a(context, x):
    pass

use_step_matcher("re")

@given(r"regex (\d+)")
def b(context, n):
    pass

behave.use_step_matcher("parse")

@given("parsed again")
def c(context):
    pass
`)
	defs, err := Definitions(context.Background(), src, stepmatch.Parse)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, stepmatch.Parse, defs[0].Matcher)
	assert.Equal(t, stepmatch.Regex, defs[1].Matcher)
	assert.Equal(t, stepmatch.Parse, defs[2].Matcher)
}

func TestDefinitions_DefaultMatcher(t *testing.T) {
	src := []byte(`@given(r"regex (\d+)")
def b(context, n):
    pass
`)
	defs, err := Definitions(context.Background(), src, stepmatch.Regex)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, stepmatch.Regex, defs[0].Matcher)
}

func TestLatestDefinition(t *testing.T) {
	defs := []step.Definition{{Pattern: "a", Line: 3}, {Pattern: "b", Line: 9}}
	got, ok := LatestDefinition(defs, 8)
	require.True(t, ok)
	assert.Equal(t, "a", got.Pattern)

	_, ok = LatestDefinition(defs, 2)
	assert.False(t, ok)
}

func TestDecodeString(t *testing.T) {
	cases := map[string]string{
		`"plain"`:              "plain",
		`'single'`:             "single",
		`u"unicode"`:           "unicode",
		`"esc \"q\""`:          `esc "q"`,
		`"\x41é"`:              "Aé",
		`"keep \d"`:            `keep \d`,
		`R'\n stays'`:          `\n stays`,
		`'''multi'''`:          "multi",
		`f"val {x}"`:           "val {x}",
		`"oct \101"`:           "oct A",
		`"quote \' ok"`:        "quote ' ok",
		`"back\\slash"`:        `back\slash`,
		`"new\nline"`:          "new\nline",
		`"trailing \\"`:        `trailing \`,
		`"unicode \U0001F600"`: "unicode \U0001F600",
	}
	for lit, want := range cases {
		got, ok := decodeString(lit)
		require.True(t, ok, lit)
		assert.Equal(t, want, got, lit)
	}

	_, ok := decodeString(`b"bytes"`)
	assert.False(t, ok)
}

func TestActiveMatcher_Environment(t *testing.T) {
	src := []byte(`from behave import use_step_matcher

use_step_matcher("re")


def before_all(context):
    use_step_matcher("parse")
`)
	got, err := ActiveMatcher(context.Background(), src, stepmatch.Parse)
	require.NoError(t, err)
	assert.Equal(t, stepmatch.Regex, got)
}

func TestActiveMatcher_UnknownMatcherIsIgnored(t *testing.T) {
	src := []byte(`use_step_matcher("bogus")` + "\n")
	got, err := ActiveMatcher(context.Background(), src, stepmatch.Parse)
	require.NoError(t, err)
	assert.Equal(t, stepmatch.Parse, got)
}
