package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleScenario(t *testing.T) {
	content := []byte(`Feature: Login
  Scenario: User logs in
    Given a user
    When they log in
    Then they see the dashboard
`)
	doc, err := Parse("login.feature", content)
	require.NoError(t, err)
	assert.Equal(t, "Login", doc.Feature.Header.Name)
	require.Len(t, doc.Feature.Scenarios, 1)
	sd := doc.Feature.Scenarios[0]
	assert.Equal(t, "User logs in", sd.Scenario.Name)
	assert.Equal(t, 2, sd.Line)
	require.Len(t, sd.Scenario.Steps, 3)
	assert.Equal(t, "a user", sd.Scenario.Steps[0].Text)
	assert.Equal(t, KeywordContext, sd.Scenario.Steps[0].KeywordType)
	assert.Equal(t, KeywordAction, sd.Scenario.Steps[1].KeywordType)
	assert.Equal(t, KeywordOutcome, sd.Scenario.Steps[2].KeywordType)
	assert.Equal(t, 5, sd.Scenario.Steps[2].Line)
}

func TestParse_Background(t *testing.T) {
	content := []byte(`Feature: Login
  Background:
    Given a registered user

  Scenario: User logs in
    When they log in
`)
	doc, err := Parse("login.feature", content)
	require.NoError(t, err)
	require.NotNil(t, doc.Feature.Background)
	require.Len(t, doc.Feature.Background.Steps, 1)
	assert.Equal(t, "a registered user", doc.Feature.Background.Steps[0].Text)
	assert.Equal(t, 3, doc.Feature.Background.Steps[0].Line)
}

func TestParse_ScenarioOutline(t *testing.T) {
	content := []byte(`Feature: Eating
  Scenario Outline: eating
    Given there are <start> cucumbers
    When I eat <eat> cucumbers

    Examples:
      | start | eat |
      | 12    | 5   |
      | 20    | 5   |
`)
	doc, err := Parse("eat.feature", content)
	require.NoError(t, err)
	require.Len(t, doc.Feature.Scenarios, 1)
	sc := doc.Feature.Scenarios[0].Scenario
	require.Len(t, sc.Examples, 1)
	assert.Equal(t, []string{"start", "eat"}, sc.Examples[0].Header)
	assert.Equal(t, [][]string{{"12", "5"}, {"20", "5"}}, sc.Examples[0].Rows)
}

func TestParse_Rule(t *testing.T) {
	content := []byte(`Feature: Rules
  Rule: Business rule
    Background:
      Given a setup

    Scenario: Test
      Then it holds
`)
	doc, err := Parse("rules.feature", content)
	require.NoError(t, err)
	require.Len(t, doc.Feature.Rules, 1)
	rule := doc.Feature.Rules[0]
	assert.Equal(t, "Business rule", rule.Name)
	require.NotNil(t, rule.Background)
	require.Len(t, rule.Scenarios, 1)
	assert.Equal(t, "Test", rule.Scenarios[0].Scenario.Name)
}

func TestParse_Tags(t *testing.T) {
	content := []byte(`@billing
Feature: Login
  @smoke @regression
  Scenario: User logs in
    Given a user
`)
	doc, err := Parse("login.feature", content)
	require.NoError(t, err)
	require.Len(t, doc.Feature.Header.Tags, 1)
	assert.Equal(t, "@billing", doc.Feature.Header.Tags[0].Name)
	tags := doc.Feature.Scenarios[0].Tags
	require.Len(t, tags, 2)
	assert.Equal(t, "@smoke", tags[0].Name)
	assert.Equal(t, "@regression", tags[1].Name)
}

func TestParse_DocStringContentIsOpaque(t *testing.T) {
	content := []byte(`Feature: Parse Scenarios
  Scenario: Doc strings stay inside their step
    Given the file contains:
      """
      Feature: Login
        Scenario: User logs in
          Given a user
      """
    Then nothing else is parsed
`)
	doc, err := Parse("test.feature", content)
	require.NoError(t, err)
	require.Len(t, doc.Feature.Scenarios, 1)
	assert.Len(t, doc.Feature.Scenarios[0].Scenario.Steps, 2)
}

func TestParse_CommentsOnly(t *testing.T) {
	doc, err := Parse("empty.feature", []byte("# nothing here yet\n"))
	require.NoError(t, err)
	assert.Nil(t, doc.Feature)
}

func TestParse_InvalidSyntax(t *testing.T) {
	_, err := Parse("broken.feature", []byte("Given a step without a feature\n"))
	require.Error(t, err)
	var pe ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "broken.feature")
}

func TestParse_Localized(t *testing.T) {
	content := []byte(`# language: fr
Fonctionnalité: Connexion
  Scénario: connexion
    Soit un utilisateur
    Alors il voit le tableau de bord
`)
	doc, err := Parse("connexion.feature", content)
	require.NoError(t, err)
	steps := doc.Feature.Scenarios[0].Scenario.Steps
	require.Len(t, steps, 2)
	assert.Equal(t, KeywordContext, steps[0].KeywordType)
	assert.Equal(t, KeywordOutcome, steps[1].KeywordType)
}
