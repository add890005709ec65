package errors

// Convenience constructors for common failure classes in the
// render -> sync -> invalidate pipeline.

// Config errors

func ConfigNotFound(path string) *PublishError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *PublishError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Parameter store errors

// ParamMissing signals a required parameter-store key was absent. The
// destination bucket lookup treats this as fatal; the distribution-id
// lookup degrades it to a warning at the pipeline layer.
func ParamMissing(key string) *PublishError {
	return New(CategoryParams, SeverityFatal, "required parameter missing").
		WithContext("key", key)
}

// Pipeline errors

func RenderFailed(cause error) *PublishError {
	return Wrap(cause, CategoryRender, SeverityFatal, "site render failed")
}

func SyncFailed(cause error) *PublishError {
	return Wrap(cause, CategoryStorage, SeverityFatal, "object store sync failed")
}

func InvalidationFailed(distributionID string, cause error) *PublishError {
	return Wrap(cause, CategoryCDN, SeverityWarning, "cache invalidation failed").
		WithContext("distribution_id", distributionID)
}

func SourceCheckoutFailed(url string, cause error) *PublishError {
	return Wrap(cause, CategorySource, SeverityFatal, "source checkout failed").
		WithContext("url", url)
}

func TreeLoadFailed(dir string, cause error) *PublishError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "rendered tree load failed").
		WithContext("dir", dir)
}
