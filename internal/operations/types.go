package operations

// Context keys under which steps publish artifacts in OperationState.Context
const (
	ContextKeyMappings           = "mappings"
	ContextKeyReferenceDate      = "reference_date"
	ContextKeyOutlierCount       = "outlier_count"
	ContextKeyNegativesCorrected = "negatives_corrected"
	ContextKeyStillActive        = "still_active_rows"
	ContextKeyImputedValues      = "imputed_values"
)

// Step metadata keys
const (
	MetadataRowsIn      = "rows_in"
	MetadataRowsOut     = "rows_out"
	MetadataColumnsIn   = "columns_in"
	MetadataColumnsOut  = "columns_out"
	MetadataRowsTouched = "rows_touched"
)
