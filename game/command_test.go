package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/accessbattle/model"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		verb Verb
		args []int
		code Code
	}{
		{in: "mv 1,2,3,4", verb: VerbMove, args: []int{1, 2, 3, 4}},
		{in: "  mv 1, 2 ,3,4  ", verb: VerbMove, args: []int{1, 2, 3, 4}},
		{in: "mv\t0,0,5,10", verb: VerbMove, args: []int{0, 0, 5, 10}},
		{in: "bs 3,1,1", verb: VerbBoost, args: []int{3, 1, 1}},
		{in: "fw 2,3,0", verb: VerbFirewall, args: []int{2, 3, 0}},
		{in: "vc 7,7", verb: VerbVirusCheck, args: []int{7, 7}},
		{in: "er 0,0,5,0,1", verb: VerbError404, args: []int{0, 0, 5, 0, 1}},
		{in: "", code: CodeMalformed},
		{in: "mv", code: CodeMalformed},
		{in: "mv 1,2,3", code: CodeMalformed},
		{in: "mv 1,2,3,4,5", code: CodeMalformed},
		{in: "mv 1,2,,4", code: CodeMalformed},
		{in: "mv -1,2,3,4", code: CodeMalformed},
		{in: "mv a,2,3,4", code: CodeMalformed},
		{in: "MV 1,2,3,4", code: CodeMalformed},
		{in: "zz 1,2", code: CodeMalformed},
		{in: "bs 3,1,2", code: CodeOutOfRange},
		{in: "fw 3,1,7", code: CodeOutOfRange},
		{in: "er 0,0,5,0,2", code: CodeOutOfRange},
		{in: "dp LLLVVVV", code: CodeMalformed},
		{in: "dp LLLLVVVVV", code: CodeMalformed},
		{in: "dp LLLLVVVX", code: CodeMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseCommand(tt.in)
			if tt.code != "" {
				assert.Equal(t, tt.code, RejectionCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.verb, c.Verb)
			assert.Equal(t, tt.args, c.Args)
		})
	}
}

func TestParseDeployment(t *testing.T) {
	c, err := ParseCommand("dp llvv VVLL")
	require.NoError(t, err)
	assert.Equal(t, VerbDeploy, c.Verb)
	assert.Equal(t, []model.CardKind{
		model.KindLink, model.KindLink, model.KindVirus, model.KindVirus,
		model.KindVirus, model.KindVirus, model.KindLink, model.KindLink,
	}, c.Deployment)
	assert.Equal(t, "dp LLVVVVLL", FormatDeployment(c.Deployment))
}

func TestFormatMoveParsesBack(t *testing.T) {
	c, err := ParseCommand(FormatMove(model.Position{X: 3, Y: 7}, model.Position{X: 5, Y: 10}))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7, 5, 10}, c.Args)
}

func TestRejectionError(t *testing.T) {
	err := reject(CodeBoost, "card on %v has no boost", model.Position{X: 1, Y: 2})
	assert.EqualError(t, err, "BOOST_CONFLICT: card on 1,2 has no boost")
	assert.Equal(t, Code(""), RejectionCode(assert.AnError))
}

func TestParseFirstMover(t *testing.T) {
	for in, want := range map[string]int{"": 1, "1": 1, "2": 2, " 2 ": 2} {
		fm, err := ParseFirstMover(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, fm(), in)
	}
	fm, err := ParseFirstMover("Random")
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		assert.Contains(t, []int{1, 2}, fm())
	}
	_, err = ParseFirstMover("3")
	assert.Error(t, err)
}
