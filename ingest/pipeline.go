/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/storekeeper/errs"
	"github.com/tomoncle/storekeeper/utils"
	"golang.org/x/sync/errgroup"
)

// ChunkSize is the BatchWriteItem limit on put requests per call.
const ChunkSize = 25

// BatchWriter is the part of the DynamoDB client the pipeline needs.
type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Report summarises one run. Unprocessed holds exactly the items the store
// handed back. FailedChunks holds the indexes of chunks whose request failed
// and FailedRecords the source records of those chunks.
type Report struct {
	Records       int      `json:"records"`
	Skipped       int      `json:"skipped"`
	SkippedLines  []int    `json:"skippedLines,omitempty"`
	Chunks        int      `json:"chunks"`
	Requests      int      `json:"requests"`
	Written       int      `json:"written"`
	Unprocessed   []Tag    `json:"unprocessed,omitempty"`
	FailedChunks  []int    `json:"failedChunks,omitempty"`
	FailedRecords []Record `json:"failedRecords,omitempty"`
}

type Pipeline struct {
	writer      BatchWriter
	table       string
	logger      logrus.FieldLogger
	now         func() time.Time
	newUID      func() string
	concurrency int
}

type Option func(*Pipeline)

// WithConcurrency bounds the chunks in flight. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n < 1 {
			n = 1
		}
		p.concurrency = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func WithUIDSource(newUID func() string) Option {
	return func(p *Pipeline) { p.newUID = newUID }
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPipeline(writer BatchWriter, table string, opts ...Option) *Pipeline {
	p := &Pipeline{
		writer:      writer,
		table:       table,
		logger:      utils.NewLogger("INGEST"),
		now:         time.Now,
		newUID:      uuid.NewString,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type chunkResult struct {
	index       int
	records     []Record
	requested   bool
	unprocessed []Tag
	err         error
}

// Run writes records in chunks of ChunkSize, one BatchWriteItem per chunk.
// Chunks are independent: a failed request does not stop later chunks and
// unprocessed items are reported, not retried. The returned error joins the
// chunk errors, a PartialWriteError for unprocessed items and the context
// error when the run was cut short.
func (p *Pipeline) Run(ctx context.Context, records []Record) (*Report, error) {
	report := &Report{Records: len(records)}
	valid := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.Valid() {
			report.Skipped++
			report.SkippedLines = append(report.SkippedLines, r.Line)
			continue
		}
		valid = append(valid, r)
	}
	if report.Skipped > 0 {
		p.logger.WithFields(logrus.Fields{"skipped": report.Skipped, "lines": report.SkippedLines}).
			Warn("records without tag id were skipped")
	}

	chunks := partition(valid, ChunkSize)
	report.Chunks = len(chunks)

	var (
		mu      sync.Mutex
		results = make([]chunkResult, 0, len(chunks))
	)
	// in-flight writes finish even when ctx is cancelled
	writeCtx := context.WithoutCancel(ctx)
	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Go may have blocked on the limit while ctx was cancelled
			if ctx.Err() != nil {
				return nil
			}
			res := p.writeChunk(writeCtx, i, chunk)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })
	var failures []error
	for _, res := range results {
		if res.requested {
			report.Requests++
		}
		if res.err != nil {
			report.FailedChunks = append(report.FailedChunks, res.index)
			report.FailedRecords = append(report.FailedRecords, res.records...)
			failures = append(failures, res.err)
			continue
		}
		report.Written += len(res.records) - len(res.unprocessed)
		report.Unprocessed = append(report.Unprocessed, res.unprocessed...)
	}
	if len(report.Unprocessed) > 0 {
		items := make([]any, len(report.Unprocessed))
		for i, t := range report.Unprocessed {
			items[i] = t
		}
		failures = append(failures, errs.NewPartialWriteError(items))
	}
	if err := ctx.Err(); err != nil && len(results) < len(chunks) {
		failures = append(failures, fmt.Errorf("ingest stopped after %d of %d chunks: %w", len(results), len(chunks), err))
	}

	p.logger.WithFields(logrus.Fields{
		"table":        p.table,
		"records":      report.Records,
		"requests":     report.Requests,
		"written":      report.Written,
		"unprocessed":  len(report.Unprocessed),
		"failedChunks": len(report.FailedChunks),
		"skipped":      report.Skipped,
	}).Info("ingest finished")
	return report, errors.Join(failures...)
}

func (p *Pipeline) writeChunk(ctx context.Context, index int, chunk []Record) chunkResult {
	res := chunkResult{index: index, records: chunk}
	log := p.logger.WithFields(logrus.Fields{"chunk": index, "size": len(chunk)})

	regDate := p.now().Format(RegDateLayout)
	sent := make(map[string]Tag, len(chunk))
	requests := make([]ddbtypes.WriteRequest, 0, len(chunk))
	for _, r := range chunk {
		tag, _ := MapRecord(r, p.newUID(), regDate)
		item, err := attributevalue.MarshalMap(tag)
		if err != nil {
			res.err = errs.NewChunkError(index, chunkItems(chunk), fmt.Errorf("marshal line %d: %w", r.Line, err))
			log.WithError(err).Error("failed to marshal chunk")
			return res
		}
		sent[tag.UID] = tag
		requests = append(requests, ddbtypes.WriteRequest{PutRequest: &ddbtypes.PutRequest{Item: item}})
	}

	res.requested = true
	out, err := p.writer.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]ddbtypes.WriteRequest{p.table: requests},
	})
	if err != nil {
		res.err = errs.NewChunkError(index, chunkItems(chunk), err)
		log.WithError(err).Error("batch write failed")
		return res
	}
	if out != nil {
		for _, wr := range out.UnprocessedItems[p.table] {
			if wr.PutRequest == nil {
				continue
			}
			res.unprocessed = append(res.unprocessed, p.unprocessedTag(log, sent, wr.PutRequest.Item))
		}
	}
	if len(res.unprocessed) > 0 {
		log.WithField("unprocessed", len(res.unprocessed)).Warn("store returned unprocessed items")
	} else {
		log.Debug("chunk written")
	}
	return res
}

// unprocessedTag resolves an item handed back by the store. The tag sent with
// the same uid wins; otherwise the item is decoded, and when that fails only
// its key attributes are kept.
func (p *Pipeline) unprocessedTag(log logrus.FieldLogger, sent map[string]Tag, item map[string]ddbtypes.AttributeValue) Tag {
	uid := stringAttr(item, "uid")
	if tag, ok := sent[uid]; ok {
		return tag
	}
	var tag Tag
	if err := attributevalue.UnmarshalMap(item, &tag); err != nil {
		log.WithError(err).WithField("uid", uid).Warn("failed to decode unprocessed item")
		return Tag{UID: uid, TagID: stringAttr(item, "tagId")}
	}
	return tag
}

func stringAttr(item map[string]ddbtypes.AttributeValue, name string) string {
	if v, ok := item[name].(*ddbtypes.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func chunkItems(chunk []Record) []any {
	items := make([]any, len(chunk))
	for i, r := range chunk {
		items[i] = r
	}
	return items
}

func partition(records []Record, size int) [][]Record {
	var chunks [][]Record
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		chunks = append(chunks, records[start:end])
	}
	return chunks
}
