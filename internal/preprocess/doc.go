// Package preprocess holds the stages that turn the raw startup table into
// the cleaned, encoded table: column pruning, mean imputation, date parsing,
// sign correction, outlier flagging, the resort by closure date, founding
// year extraction, categorical encoding and date normalisation.
//
// Every stage is an operations.Step. Its typed method (Prune, Impute, ...)
// is a pure function of the input table; Execute wraps it and publishes the
// stage's stats and artifacts into the run's OperationState. Build wires the
// stages from config.PipelineConfig in their fixed order.
package preprocess
