// Package shared holds helpers used across startup-eda packages that belong
// to no single pipeline layer.
//
// The testutil subpackage provides a capturing slog handler and fixture
// writers for CSV datasets:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    path := testutil.WriteCSV(t, "startup.csv", testutil.SampleStartupRows())
//	    ...
//	    testutil.AssertLogContains(t, handler, slog.LevelInfo, "Pipeline completed")
//	}
package shared
