// Package metric provides Prometheus metrics for tw5keep.
//
// Metrics live on a private registry and are exposed by Handler on the
// optional metrics listener, never on the wiki listener:
//
//   - tw5keep_http_requests_total{method,status}
//   - tw5keep_http_request_duration_seconds{method}
//   - tw5keep_wiki_saves_total{result}
//   - tw5keep_wiki_snapshot_bytes
//   - tw5keep_wiki_last_save_timestamp_seconds
package metric
