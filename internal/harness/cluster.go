package harness

import (
	"context"
	"fmt"

	"nbharness/internal/notebook"
)

const (
	clusterDir      = "multi-worker-toy-example"
	clusterNotebook = "multi-worker-cluster.ipynb"
)

// ClusterTransform rewires the toy cluster notebook to attach to an existing
// scheduler instead of deploying its own, and shrinks the generated dataset
// so the run stays cheap.
func ClusterTransform(schedulerAddr string) notebook.Transform {
	return notebook.ChainTransforms(
		notebook.ReplaceLiteral("cluster = None", fmt.Sprintf("cluster = '%s'", schedulerAddr)),
		notebook.ReplaceLiteral("write_count = 25", "write_count = 4"),
		notebook.ReplaceLiteral(`freq = "1s"`, `freq = "1h"`),
		notebook.ReplaceLiteral("part_mem_fraction=0.1", "part_size=1_000_000"),
		notebook.ReplaceLiteral("out_files_per_proc=8", "out_files_per_proc=1"),
	)
}

// RunClusterExample runs the multi-worker toy notebook against the scheduler
// at schedulerAddr, using scratch as the notebook's base directory.
func (h *Harness) RunClusterExample(ctx context.Context, scratch, schedulerAddr string) error {
	runID := newRunID()
	log := h.log.With().Str("run_id", runID).Str("scenario", "cluster").Logger()

	path, ok := h.notebookPath(clusterDir, clusterNotebook)
	if !ok {
		log.Warn().Str("notebook", path).Msg("cluster notebook absent, skipping")
		return nil
	}

	env := map[string]string{"BASE_DIR": scratch}
	log.Info().Str("notebook", path).Str("scheduler", schedulerAddr).Msg("running cluster notebook")
	return notebook.RunNotebook(ctx, scratch, path, ClusterTransform(schedulerAddr), h.runConfig(env))
}
