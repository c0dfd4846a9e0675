// Package instrumentation provides OpenTelemetry metrics and tracing for
// chatcal.
//
// # Metrics
//
// Command Metrics:
//   - chat_command_invocations_total: Counter of dispatched commands by command and status
//   - chat_command_duration_seconds: Histogram of command handler durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// OAuth Metrics:
//   - oauth_auth_total: Counter of authorization code exchanges by result
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// Setup Metrics:
//   - calendar_setup_sessions_total: Counter of setup sessions by outcome
//
// Metrics are exported to a dedicated Prometheus registry served by the
// metrics server, or pushed over OTLP.
//
// # Tracing
//
// Spans are created for chat messages (chat.message) and Google API calls
// (google.<service>.<operation>). Tracing is off unless an exporter is
// configured.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	metrics := provider.Metrics()
//	metrics.RecordCommandInvocation(ctx, "schedule", "success", time.Since(start))
package instrumentation
