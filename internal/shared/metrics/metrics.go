package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	uploadsStartedTotal   atomic.Uint64
	uploadsCompletedTotal atomic.Uint64
	uploadsRejectedTotal  atomic.Uint64
	uploadsFailedTotal    atomic.Uint64
	downloadsTotal        atomic.Uint64
	downloadsFailedTotal  atomic.Uint64
	blobsDeletedTotal     atomic.Uint64
	orphanedBlobsTotal    atomic.Uint64

	uploadBytes   = newHistogram([]float64{1 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20, 10 << 20})
	downloadBytes = newHistogram([]float64{1 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20, 10 << 20})
)

// IncUploadStarted increments the started-upload counter.
func IncUploadStarted() {
	uploadsStartedTotal.Add(1)
}

// IncUploadCompleted increments the completed-upload counter and records size.
func IncUploadCompleted(sizeBytes int64) {
	uploadsCompletedTotal.Add(1)
	if sizeBytes < 0 {
		sizeBytes = 0
	}
	uploadBytes.Observe(float64(sizeBytes))
}

// IncUploadRejected increments the policy-rejection counter.
func IncUploadRejected() {
	uploadsRejectedTotal.Add(1)
}

// IncUploadFailed increments the mid-stream failure counter.
func IncUploadFailed() {
	uploadsFailedTotal.Add(1)
}

// IncDownload increments the download counter and records size.
func IncDownload(sizeBytes int64) {
	downloadsTotal.Add(1)
	if sizeBytes < 0 {
		sizeBytes = 0
	}
	downloadBytes.Observe(float64(sizeBytes))
}

// IncDownloadFailed increments the failed-download counter.
func IncDownloadFailed() {
	downloadsFailedTotal.Add(1)
}

// IncBlobDeleted increments the deleted-blob counter.
func IncBlobDeleted() {
	blobsDeletedTotal.Add(1)
}

// IncOrphanedBlob increments the counter of blobs left behind by failed
// best-effort deletes.
func IncOrphanedBlob() {
	orphanedBlobsTotal.Add(1)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "uploads_started_total", "Total uploads started", uploadsStartedTotal.Load())
	writeCounter(&buf, "uploads_completed_total", "Total uploads completed", uploadsCompletedTotal.Load())
	writeCounter(&buf, "uploads_rejected_total", "Total uploads rejected by policy", uploadsRejectedTotal.Load())
	writeCounter(&buf, "uploads_failed_total", "Total uploads failed mid-stream", uploadsFailedTotal.Load())
	writeCounter(&buf, "downloads_total", "Total blob downloads served", downloadsTotal.Load())
	writeCounter(&buf, "downloads_failed_total", "Total blob downloads failed", downloadsFailedTotal.Load())
	writeCounter(&buf, "blobs_deleted_total", "Total blobs deleted", blobsDeletedTotal.Load())
	writeCounter(&buf, "orphaned_blobs_total", "Total blobs orphaned by failed cleanup", orphanedBlobsTotal.Load())
	writeHistogram(&buf, "upload_bytes", "Uploaded blob size in bytes", uploadBytes.Snapshot())
	writeHistogram(&buf, "download_bytes", "Downloaded blob size in bytes", downloadBytes.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
