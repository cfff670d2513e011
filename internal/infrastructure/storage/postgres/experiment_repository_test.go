package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"

	"hive-vision/internal/domain/entity"
)

func TestRecordMapping_KeepsScores(t *testing.T) {
	e := entity.NewExperiment("bayes", "sift", 7)
	e.DictionarySize = 90
	e.Test = entity.Evaluation{Precision: 0.8, Recall: 0.8, Accuracy: 0.8, Total: 100, Correct: 80}
	e.ValidationSize = 12
	e.Validation = entity.Evaluation{Precision: 0.75, Recall: 0.75, Accuracy: 0.75, Total: 12, Correct: 9}

	rec := toRecord(e)
	require.Equal(t, "experiments", rec.TableName())
	require.Equal(t, int64(7), rec.Seed)

	back := fromRecord(rec)
	require.Equal(t, e.ID, back.ID)
	require.Equal(t, e.Test, back.Test)
	require.Equal(t, e.Validation, back.Validation)
	require.Equal(t, 12, back.ValidationSize)
	require.Equal(t, uint64(7), back.Seed)
}
