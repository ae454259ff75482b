package ids

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTriggerID_WhenGenerated_ThenCarriesPrefixAndProjectShard(t *testing.T) {
	// Arrange
	projectID := "prj_0001abc"

	// Act
	id := NewTriggerID(projectID)

	// Assert
	assert.True(t, HasPrefix(id, TriggerPrefix))
	assert.True(t, Valid(id))
	expectedShard := fmt.Sprintf("%04d", Shard(projectID))
	assert.Equal(t, expectedShard, id[len("trig_"):len("trig_")+4])
}

func TestNewTriggerID_WhenSameProject_ThenIDsSortByCreationOrder(t *testing.T) {
	// Arrange
	projectID := "prj_0001abc"

	// Act
	generated := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		generated = append(generated, NewTriggerID(projectID))
	}

	// Assert
	sorted := append([]string(nil), generated...)
	sort.Strings(sorted)
	assert.Equal(t, generated, sorted, "ids within one shard should already be in creation order")
}

func TestShard_WhenSameProject_ThenStable(t *testing.T) {
	// Act & Assert
	assert.Equal(t, Shard("prj_x"), Shard("prj_x"))
	assert.Less(t, Shard("prj_x"), uint32(10000))
}

func TestValid_WhenMalformed_ThenFalse(t *testing.T) {
	// Arrange
	cases := []string{
		"",
		"trig",
		"trig_",
		"bogus_0001deadbeefdeadbeefdeadbeefdeadbeef",
		"trig_00xxdeadbeefdeadbeefdeadbeefdeadbeef",
		"trig_0001tooshort",
	}

	// Act & Assert
	for _, c := range cases {
		assert.False(t, Valid(c), "expected %q to be invalid", c)
	}
}

func TestValid_WhenGenerated_ThenTrueForAllPrefixes(t *testing.T) {
	// Act & Assert
	assert.True(t, Valid(NewTriggerID("prj_a")))
	assert.True(t, Valid(NewRunID("prj_a")))
	assert.True(t, Valid(NewAttemptID("prj_a")))
	assert.True(t, Valid(NewProjectID()))
}
