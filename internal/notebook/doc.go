// Package notebook extracts runnable scripts from Jupyter notebook files and
// executes them as subprocesses. It is structured into small files by concern:
//
//   - notebook.go: Document/Cell model and .ipynb parsing.
//   - extract.go: code-cell extraction, magic/shell-escape stripping, transforms.
//   - run.go: script execution in a scratch directory with explicit env config.
//   - errors.go: error types and helpers (IsParseError, IsScriptFailure).
package notebook
