package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardExcludesPrivileged(t *testing.T) {
	std := Standard()
	assert.False(t, Has(std, GuildMembers))
	assert.False(t, Has(std, GuildPresences))
	assert.False(t, Has(std, MessageContent))
	assert.True(t, Has(std, Guilds))
	assert.True(t, Has(std, GuildMessages))
}

func TestAllIncludesPrivileged(t *testing.T) {
	all := All()
	assert.True(t, Has(all, GuildMembers))
	assert.True(t, Has(all, GuildPresences))
	assert.True(t, Has(all, MessageContent))
	assert.True(t, Has(all, Standard()))
}

func TestPrivilegedMasksToPrivilegedOnly(t *testing.T) {
	requested := Guilds | GuildMembers | MessageContent
	got := Privileged(requested)
	assert.True(t, Has(got, GuildMembers))
	assert.True(t, Has(got, MessageContent))
	assert.False(t, Has(got, Guilds))
}

func TestNoneHasNothing(t *testing.T) {
	assert.False(t, Has(None(), Guilds))
}
