package builtin_test

import (
	"context"
	"testing"

	"github.com/agentstation/dockflow"
	"github.com/agentstation/dockflow/builtin"
	"github.com/agentstation/dockflow/internal/testutil"
)

func TestConcatAndConvert(t *testing.T) {
	ctx := context.Background()
	assert := testutil.NewDockAssert(t)

	greeting := builtin.NewText("greeting", "answer: ")
	n := builtin.NewNumber("n", 42)
	convert := builtin.NewConvert("convert")
	concat := builtin.NewConcat("concat")
	assert.Holds(concat.Output, "")

	g := dockflow.NewGraph("types")
	testutil.Wire(t, g, []dockflow.Element{greeting, n, convert, concat},
		[2]string{"greeting.output", "concat.a"},
		[2]string{"n.output", "convert.input"},
		[2]string{"convert.output", "concat.b"},
	)
	assert.Holds(convert.Output, "42")
	assert.Holds(concat.Output, "answer: 42")

	assert.NoError(n.Set(ctx, 0.5))
	assert.Holds(concat.Output, "answer: 0.5")

	// A missing operand counts as empty.
	assert.NoError(n.Output.Invalidate(ctx))
	assert.Invalid(convert.Output)
	assert.Holds(concat.Output, "answer: ")

	assert.NoError(g.Act(ctx, "greeting", builtin.ActionSet, "total="))
	assert.Equal("total=", greeting.Value())
	assert.Holds(concat.Output, "total=")
}

func TestConnectRejectsNumberIntoString(t *testing.T) {
	n := builtin.NewNumber("n", 1)
	concat := builtin.NewConcat("concat")
	g := dockflow.NewGraph("types")
	testutil.Wire(t, g, []dockflow.Element{n, concat})

	err := g.Connect(context.Background(), n.Output, concat.A)
	testutil.NewAssert(t).ErrorIs(err, dockflow.ErrTypeMismatch)
}
