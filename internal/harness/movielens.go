package harness

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"nbharness/internal/datagen"
	"nbharness/internal/inference"
	"nbharness/internal/notebook"
	"nbharness/internal/tabular"
)

// Movielens example notebooks, relative to the notebooks directory.
const (
	movielensDir         = "getting-started-movielens"
	movielensETL         = "01-etl.ipynb"
	movielensTrainTorch  = "02-training-with-pytorch.ipynb"
	movielensTrainTF     = "02-training-with-tf.ipynb"
	movielensInferenceTF = "03-inference-with-tf.ipynb"
)

// DatasetKind selects which movielens table to synthesize.
type DatasetKind string

const (
	DatasetMovie   DatasetKind = "movie"
	DatasetRatings DatasetKind = "ratings"
)

// movieSchema matches the movielens movies table: a multi-hot genre column
// and a movie id.
func movieSchema() datagen.Schema {
	return datagen.Schema{
		Cats: map[string]datagen.CatSpec{
			"genres":  {Cardinality: 50, MinEntrySize: 1, MaxEntrySize: 5, MultiMin: 2, MultiMax: 4},
			"movieId": {Cardinality: 500, MinEntrySize: 1, MaxEntrySize: 5},
		},
	}
}

// ratingsSchema matches the movielens ratings table.
func ratingsSchema() datagen.Schema {
	return datagen.Schema{
		Cats: map[string]datagen.CatSpec{
			"movieId": {Cardinality: 500, MinEntrySize: 1, MaxEntrySize: 5},
			"userId":  {Cardinality: 500, MinEntrySize: 1, MaxEntrySize: 5},
		},
		Labels: map[string]datagen.LabelSpec{
			"rating": {Cardinality: 5},
		},
	}
}

// GenMovieLensData synthesizes one movielens table into dir and stages it
// under its final name: movies are de-duplicated by movieId into
// movies_converted.csv; ratings become train.csv, or valid.csv when valid
// is set.
func GenMovieLensData(gen *datagen.Generator, dir string, rows int, kind DatasetKind, valid bool) error {
	raw := filepath.Join(dir, "dataset_0.csv")
	switch kind {
	case DatasetMovie:
		if err := gen.WriteDataset(raw, rows, movieSchema()); err != nil {
			return err
		}
		t, err := tabular.ReadFile(raw)
		if err != nil {
			return err
		}
		t, err = tabular.DropDuplicates(t, "movieId")
		if err != nil {
			return err
		}
		return tabular.WriteFile(filepath.Join(dir, "movies_converted.csv"), t)
	case DatasetRatings:
		if err := gen.WriteDataset(raw, rows, ratingsSchema()); err != nil {
			return err
		}
		name := "train.csv"
		if valid {
			name = "valid.csv"
		}
		return tabular.Rename(raw, filepath.Join(dir, name))
	default:
		return fmt.Errorf("unknown dataset kind: %s", kind)
	}
}

// PlotModelTransform disables model-diagram rendering so the training
// notebook does not require graphviz.
var PlotModelTransform = notebook.CommentOut("tf.keras.utils.plot_model(model)")

// PreloadedModelsTransform disables explicit model load/unload calls; the
// harness starts the server with all models already in its repository.
var PreloadedModelsTransform = notebook.ChainTransforms(
	notebook.CommentOut("client.load_model"),
	notebook.CommentOut("client.unload_model"),
)

// RunMovieLensExample generates synthetic movielens data in scratch, runs the
// ETL and training notebooks against it, and, when a server binary is
// configured, exercises the inference notebook against a live server.
func (h *Harness) RunMovieLensExample(ctx context.Context, scratch string) error {
	runID := newRunID()
	log := h.log.With().Str("run_id", runID).Str("scenario", "movielens").Logger()

	gen := datagen.New(time.Now().UnixNano())
	if err := GenMovieLensData(gen, scratch, 10000, DatasetMovie, false); err != nil {
		return fmt.Errorf("generate movie data: %w", err)
	}
	if err := GenMovieLensData(gen, scratch, 10000, DatasetRatings, false); err != nil {
		return fmt.Errorf("generate ratings data: %w", err)
	}
	if err := GenMovieLensData(gen, scratch, 5000, DatasetRatings, true); err != nil {
		return fmt.Errorf("generate validation data: %w", err)
	}

	modelPath := filepath.Join(scratch, "models")
	env := map[string]string{
		"INPUT_DATA_DIR": scratch,
		"MODEL_PATH":     modelPath,
	}

	if path, ok := h.notebookPath(movielensDir, movielensETL); ok {
		log.Info().Str("notebook", path).Msg("running ETL notebook")
		if err := notebook.RunNotebook(ctx, scratch, path, nil, h.runConfig(env)); err != nil {
			return err
		}
	} else {
		log.Warn().Str("notebook", path).Msg("ETL notebook absent, skipping")
	}

	trainingRuns := []struct {
		name      string
		transform notebook.Transform
	}{
		{movielensTrainTorch, nil},
		{movielensTrainTF, PlotModelTransform},
	}
	for _, tr := range trainingRuns {
		path, ok := h.notebookPath(movielensDir, tr.name)
		if !ok {
			log.Warn().Str("notebook", path).Msg("training notebook absent, skipping")
			continue
		}
		log.Info().Str("notebook", path).Msg("running training notebook")
		if err := notebook.RunNotebook(ctx, scratch, path, tr.transform, h.runConfig(env)); err != nil {
			return err
		}
	}

	path, ok := h.notebookPath(movielensDir, movielensInferenceTF)
	if !ok || h.cfg.ServerBin == "" {
		log.Info().Msg("inference notebook or server binary absent, skipping inference run")
		return nil
	}
	log.Info().Str("notebook", path).Msg("running inference notebook against live server")
	return inference.WithServer(ctx, h.serverConfig(modelPath), func(*inference.Client) error {
		return notebook.RunNotebook(ctx, scratch, path, PreloadedModelsTransform, h.runConfig(env))
	})
}
