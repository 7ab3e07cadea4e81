package collector

import (
	"context"
	"fmt"

	"github.com/jo-urn/lol-scouter/pkg/checkpoint"
	"github.com/jo-urn/lol-scouter/pkg/storage"
)

// markerDir returns the prefix a job keeps its checkpoint marker under.
func markerDir(job string) (string, error) {
	switch job {
	case JobAccounts, JobHistory:
		return storage.FragmentPrefix, nil
	case JobMatches:
		return storage.BackupPrefix, nil
	default:
		return "", fmt.Errorf("job %q does not checkpoint", job)
	}
}

// ResumePlan reads the last marker of job from the output location and
// returns the range a follow-up run should cover. done is true when the
// last run finished. Nothing is resumed automatically.
func (c *Collector) ResumePlan(ctx context.Context, job string) (marker *checkpoint.Marker, next Range, done bool, err error) {
	dir, err := markerDir(job)
	if err != nil {
		return nil, Range{}, false, err
	}

	marker, err = checkpoint.LoadMarker(ctx, c.deps.Output, dir, job)
	if err != nil {
		return nil, Range{}, false, err
	}

	start, end, done := marker.Remaining()
	return marker, Range{Start: start, End: end}, done, nil
}
