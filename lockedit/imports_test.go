package lockedit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImports_RenderHash(t *testing.T) {
	im := NewImports()
	assert.True(t, im.Empty())
	assert.Nil(t, im.Render(Hash))

	im.AddFrom("typing", "Optional", "")
	im.AddFrom("pod", "pod", "")
	im.AddFrom("pod", "Enum", "")
	im.AddFrom("pod", "Enum", "")
	im.AddFrom("lib.addrs", "MAIN_STATE", "STATE")
	im.Add("codegen.idl", "")
	im.Add("codegen.idl.types", "types")
	require.False(t, im.Empty())

	assert.Equal(t, strings.Join([]string{
		"import codegen.idl\n",
		"import codegen.idl.types as types\n",
		"\n",
		"from lib.addrs import MAIN_STATE as STATE\n",
		"from pod import (\n",
		"    Enum,\n",
		"    pod,\n",
		")\n",
		"from typing import Optional\n",
		"\n",
	}, ""), strings.Join(im.Render(Hash), ""))
}

func TestImports_RenderGo(t *testing.T) {
	im := NewImports()
	im.Add("github.com/gomlx/solmate/borsh", "")
	assert.Equal(t, []string{"import \"github.com/gomlx/solmate/borsh\"\n"}, im.Render(Go))

	im.Add("github.com/pkg/errors", "")
	im.Add("example.com/gen/marinade/types", "mtypes")
	im.AddFrom("github.com/gomlx/solmate/solana", "PublicKey", "")
	im.AddFrom("github.com/gomlx/solmate/solana", "AccountMeta", "")
	im.AddFrom("github.com/gomlx/solmate/borsh", "Marshal", "")
	assert.Equal(t, []string{
		"import (\n",
		"\tmtypes \"example.com/gen/marinade/types\"\n",
		"\t\"github.com/gomlx/solmate/borsh\"\n",
		"\t\"github.com/gomlx/solmate/solana\"\n",
		"\t\"github.com/pkg/errors\"\n",
		")\n",
	}, im.Render(Go))

	im.Reset()
	assert.True(t, im.Empty())
}

func TestImports_SortedAccessors(t *testing.T) {
	im := NewImports()
	im.Add("b", "")
	im.Add("a", "z")
	im.Add("a", "")
	assert.Equal(t, []Import{{Path: "a"}, {Path: "a", Alias: "z"}, {Path: "b"}}, im.Modules())

	im.AddFrom("s", "y", "")
	im.AddFrom("r", "x", "")
	assert.Equal(t, []FromImport{
		{Source: "r", Symbols: []Symbol{{Name: "x"}}},
		{Source: "s", Symbols: []Symbol{{Name: "y"}}},
	}, im.FromImports())
}
