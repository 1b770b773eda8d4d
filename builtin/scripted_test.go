package builtin_test

import (
	"context"
	"testing"

	"github.com/agentstation/dockflow"
	"github.com/agentstation/dockflow/builtin"
	"github.com/agentstation/dockflow/builtin/script"
	"github.com/agentstation/dockflow/internal/testutil"
)

func TestScriptSingleOutput(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewDockAssert(t)

	a := builtin.NewNumber("a", 3)
	b := builtin.NewNumber("b", 4)
	hyp, err := builtin.NewScript("hyp", builtin.ScriptConfig{
		Source:     "return math.sqrt(a * a + b * b)",
		Inputs:     []string{"a", "b"},
		Outputs:    []string{"length"},
		RequireAll: true,
	})
	assert.NoError(err)

	g := dockflow.NewGraph("script")
	testutil.Wire(t, g, []dockflow.Element{a, b, hyp},
		[2]string{"a.output", "hyp.a"},
		[2]string{"b.output", "hyp.b"},
	)
	length, _ := hyp.Source("length")
	assert.Holds(length, 5.0)

	assert.NoError(b.Output.Invalidate(ctx))
	assert.Invalid(length)
}

func TestScriptTableOutputs(t *testing.T) {
	assert := testutil.NewDockAssert(t)

	a := builtin.NewNumber("a", 7)
	b := builtin.NewNumber("b", 2)
	calc, err := builtin.NewScript("calc", builtin.ScriptConfig{
		Source:  "function compute(i) return { sum = i.a + i.b, diff = i.a - i.b } end",
		Inputs:  []string{"a", "b"},
		Outputs: []string{"sum", "diff", "product"},
	})
	assert.NoError(err)

	g := dockflow.NewGraph("script")
	testutil.Wire(t, g, []dockflow.Element{a, b, calc},
		[2]string{"a.output", "calc.a"},
		[2]string{"b.output", "calc.b"},
	)
	sum, _ := calc.Source("sum")
	diff, _ := calc.Source("diff")
	product, _ := calc.Source("product")
	assert.Holds(sum, 9.0)
	assert.Holds(diff, 5.0)
	assert.Invalid(product)
}

func TestScriptOptionalInputs(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewDockAssert(t)

	a := builtin.NewNumber("a", 1)
	s, err := builtin.NewScript("s", builtin.ScriptConfig{
		Source:  "return (a or 0) + (b or 0)",
		Inputs:  []string{"a", "b"},
		Outputs: []string{"out"},
	})
	assert.NoError(err)

	g := dockflow.NewGraph("script")
	testutil.Wire(t, g, []dockflow.Element{a, s}, [2]string{"a.output", "s.a"})
	out, _ := s.Source("out")
	assert.Holds(out, 1.0)

	assert.NoError(a.Set(ctx, 6))
	assert.Holds(out, 6.0)
}

func TestScriptErrors(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewDockAssert(t)
	errs := &testutil.ErrorCollector{}

	_, err := builtin.NewScript("bad", builtin.ScriptConfig{Source: "return (", Outputs: []string{"out"}})
	assert.ErrorIs(err, builtin.ErrInvalidConfig)

	a := builtin.NewNumber("a", 1)
	s, err := builtin.NewScript("s", builtin.ScriptConfig{
		Source:  "if a > 1 then error('too big') end return a",
		Inputs:  []string{"a"},
		Outputs: []string{"out"},
	})
	assert.NoError(err)

	g := dockflow.NewGraph("script", dockflow.WithErrorHandler(errs.Handle))
	testutil.Wire(t, g, []dockflow.Element{a, s}, [2]string{"a.output", "s.a"})
	out, _ := s.Source("out")
	assert.Holds(out, 1.0)

	assert.NoError(a.Set(ctx, 2))
	assert.Invalid(out)
	assert.Len(errs.Errors(), 1)
	assert.ErrorIs(errs.Errors()[0], script.ErrRuntime)
}

func TestScriptDebugOutput(t *testing.T) {
	assert := testutil.NewDockAssert(t)

	var printed []string
	s, err := builtin.NewScript("s", builtin.ScriptConfig{
		Source:  "print('computing') return 'done'",
		Outputs: []string{"out"},
		Debug:   func(msg string) { printed = append(printed, msg) },
	})
	assert.NoError(err)

	g := dockflow.NewGraph("script")
	testutil.Wire(t, g, []dockflow.Element{s})
	s.Recompute(context.Background())

	out, _ := s.Source("out")
	assert.Holds(out, "done")
	assert.Equal([]string{"computing"}, printed)
}
