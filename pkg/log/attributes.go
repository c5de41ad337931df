// Standard attribute keys for pipeline logging. Using these keys keeps log
// output consistent across stages and makes runs easy to filter and compare.

package log

// Pipeline and operation context.
const (
	// StageKey identifies the pipeline stage emitting the record.
	// Examples: "Split", "Imputed", "Scaled", "Trained"
	StageKey = "pipeline.stage"

	// OperationKey specifies the estimator operation being performed.
	// Standard values: "fit", "predict", "transform", "fit_transform", "score"
	OperationKey = "ml.operation"

	// ModelNameKey identifies the estimator type.
	// Examples: "CountryMeanImputer", "StandardScaler", "GBTRegressor"
	ModelNameKey = "model.name"

	// ComponentKey identifies which package performs the operation.
	// Examples: "preprocessing", "boosting", "pipeline"
	ComponentKey = "ml.component"
)

// Data shape and characteristics.
const (
	// SamplesKey indicates the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of feature columns.
	FeaturesKey = "data.features"

	// ColumnsKey indicates a count of affected columns (e.g. imputed columns).
	ColumnsKey = "data.columns"

	// ColumnKey names a single column involved in the operation.
	ColumnKey = "data.column"

	// CountryKey names the category key (country) involved in the operation.
	CountryKey = "data.country"

	// PartitionKey names the dataset partition: "train", "validation", "test".
	PartitionKey = "data.partition"
)

// Performance and evaluation metrics.
const (
	// DurationMsKey records execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2Key records the coefficient of determination on the held-out portion.
	R2Key = "metric.r2"

	// RMSEKey records root mean squared error during boosting evaluation.
	RMSEKey = "metric.rmse"

	// IterationKey records a boosting iteration number.
	IterationKey = "train.iteration"

	// BestIterationKey records the iteration selected by early stopping.
	BestIterationKey = "train.best_iteration"
)
