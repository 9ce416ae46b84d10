package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossframe-dev/reroute/internal/ast"
	"github.com/crossframe-dev/reroute/internal/parser"
)

// Test Plan for fact-sheet derivation:
// - Import shapes: default, named, aliased, namespace
// - Framework imports flip HasNextImports
// - Exports: function, const, default, re-export lists
// - Data-fetching exports flip HasDataFetching
// - Component detection needs an uppercase name AND a markup return
// - Hook detection by the use-prefix convention
// - ImportOf lookup
// - Nil trees yield the empty sheet

func analyze(t *testing.T, source string) *FactSheet {
	t.Helper()
	tree, err := parser.Parse([]byte(source), "module.tsx", parser.OptionsForFile("module.tsx"))
	require.NoError(t, err)
	return Analyze(tree)
}

func TestAnalyze_ImportShapes(t *testing.T) {
	t.Parallel()

	facts := analyze(t, `import React from "react";
import * as path from "path";
import Link from "next/link";
import { useState, useEffect as useFx } from "react-hooks";
`)

	require.Len(t, facts.Imports, 4)

	react := facts.ImportOf("react")
	require.NotNil(t, react)
	assert.Equal(t, "React", react.Default)

	pathImp := facts.ImportOf("path")
	require.NotNil(t, pathImp)
	assert.Equal(t, "path", pathImp.Namespace)

	hooks := facts.ImportOf("react-hooks")
	require.NotNil(t, hooks)
	assert.Equal(t, []string{"useState", "useFx"}, hooks.Named)

	assert.True(t, facts.HasNextImports)
	assert.Nil(t, facts.ImportOf("missing"))
}

func TestAnalyze_NoFrameworkImports(t *testing.T) {
	t.Parallel()

	facts := analyze(t, `import React from "react";
export const helper = () => 1;
`)
	assert.False(t, facts.HasNextImports)
	assert.False(t, facts.HasDataFetching)
}

func TestAnalyze_Exports(t *testing.T) {
	t.Parallel()

	facts := analyze(t, `const first = 1;
const second = 2;
export function helper() { return first; }
export const pair = () => second;
export { first, second as two };
export default function Page() { return <div />; }
`)

	assert.True(t, facts.Exports["helper"])
	assert.True(t, facts.Exports["pair"])
	assert.True(t, facts.Exports["first"])
	assert.True(t, facts.Exports["two"])
	assert.True(t, facts.Exports["default"])
	assert.False(t, facts.Exports["second"])
}

func TestAnalyze_DataFetching(t *testing.T) {
	t.Parallel()

	facts := analyze(t, `export async function getServerSideProps() {
  return { props: {} };
}
`)
	assert.True(t, facts.HasDataFetching)
	assert.True(t, facts.Exports["getServerSideProps"])
}

func TestAnalyze_Components(t *testing.T) {
	t.Parallel()

	facts := analyze(t, `function Banner() {
  return <header>hi</header>;
}

const Card = () => <div className="card" />;

const Badge = () => (<span className="badge" />);

function formatDate(d) {
  return d.toString();
}

function Loader() {
  return null;
}

const Tally = () => (1 + 1);
`)

	assert.True(t, facts.Components["Banner"])
	assert.True(t, facts.Components["Card"])
	assert.True(t, facts.Components["Badge"], "parenthesized expression bodies return markup")
	assert.False(t, facts.Components["formatDate"], "lowercase names are not components")
	assert.False(t, facts.Components["Loader"], "no markup return means no component")
	assert.False(t, facts.Components["Tally"], "parenthesized non-markup body is not a component")
}

func TestAnalyze_Hooks(t *testing.T) {
	t.Parallel()

	facts := analyze(t, `function useCounter() {
  return 0;
}

const useToggle = () => false;

function used() { return 1; }
`)

	assert.True(t, facts.Hooks["useCounter"])
	assert.True(t, facts.Hooks["useToggle"])
	assert.False(t, facts.Hooks["used"], "use prefix alone is not a hook name")
}

func TestAnalyze_NilTree(t *testing.T) {
	t.Parallel()

	facts := Analyze(nil)
	require.NotNil(t, facts)
	assert.Empty(t, facts.Imports)
	assert.Empty(t, facts.Exports)

	facts = Analyze(&ast.Tree{})
	require.NotNil(t, facts)
	assert.False(t, facts.HasNextImports)
}
