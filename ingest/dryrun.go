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

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"
)

// DryRunWriter accepts every request without sending it.
type DryRunWriter struct {
	Logger logrus.FieldLogger
}

func (w DryRunWriter) BatchWriteItem(_ context.Context, params *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	if w.Logger != nil {
		for table, reqs := range params.RequestItems {
			w.Logger.WithFields(logrus.Fields{"table": table, "items": len(reqs)}).Info("dry run: batch not sent")
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}
