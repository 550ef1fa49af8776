package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    JobStatus
		wantErr bool
	}{
		{in: "pending", want: JobStatusPending},
		{in: " Processing ", want: JobStatusProcessing},
		{in: "running", want: JobStatusProcessing},
		{in: "completed", want: JobStatusCompleted},
		{in: "FAILED", want: JobStatusFailed},
		{in: "exploded", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var s JobStatus
			err := s.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, JobStatusPending.Terminal())
	assert.False(t, JobStatusProcessing.Terminal())
	assert.True(t, JobStatusCompleted.Terminal())
	assert.True(t, JobStatusFailed.Terminal())
}

func TestStage_Ordering(t *testing.T) {
	assert.Equal(t, 0, StageStarting.Rank())
	for i, st := range PipelineStages {
		assert.Equal(t, i+1, st.Rank(), st)
		assert.True(t, st.IsPipeline())
	}
	assert.Greater(t, StageDone.Rank(), StageAnalysis.Rank())
	assert.False(t, StageDone.IsPipeline())
	assert.Equal(t, -1, Stage("bogus").Rank())
	assert.False(t, Stage("bogus").Valid())
	assert.Equal(t, "Researching trademarks", StageTrademark.Label())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"USA", "India", "UK"}, SplitList(" USA, India ,,UK "))
	assert.Empty(t, SplitList(" , "))
}

func TestDecodeReport(t *testing.T) {
	raw := []byte(`{"report_id":"R42","is_authenticated":true,"brand_scores":[{"brand_name":"Cleevo","namescore":5,"verdict":"REJECT"}]}`)
	r, err := DecodeReport(raw)
	require.NoError(t, err)
	assert.Equal(t, "R42", r.ID)
	assert.True(t, r.IsAuthenticated)
	require.Len(t, r.BrandScores, 1)
	assert.Equal(t, "REJECT", r.BrandScores[0].Verdict)
	assert.JSONEq(t, string(raw), string(r.Raw))
}
