// Package metrics provides Prometheus instrumentation for encoder resolution.
//
// Metrics are registered with the default Prometheus registry via promauto
// and prefixed with "encoderkit_". Embedding applications expose them by
// mounting promhttp.Handler() on their own metrics endpoint.
//
//   - ResolutionsTotal: Counter of Resolve outcomes by source
//   - DownloadsTotal: Counter of download attempts by outcome
//   - DownloadBytesTotal: Counter of bytes installed into the managed cache
//   - DownloadDuration: Histogram of download attempt duration
//   - BuildInfoProbesTotal: Counter of encoder build-configuration invocations by result
//
// Example PromQL, download failure ratio:
//
//	sum(rate(encoderkit_downloads_total{outcome!="success"}[1h])) /
//	sum(rate(encoderkit_downloads_total[1h]))
package metrics
