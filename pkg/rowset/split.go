// Copyright 2025 Alexander Alten (novatechflow), NovaTechflow (novatechflow.com).
// This project is supported and financed by Scalytics, Inc. (www.scalytics.io).
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rowset

import "fmt"

// OffsetRange is a half-open offset interval [Begin, End).
type OffsetRange struct {
	Begin int64
	End   int64
}

func (r OffsetRange) Validate() error {
	if r.Begin > r.End {
		return fmt.Errorf("offset range begin %d exceeds end %d", r.Begin, r.End)
	}
	return nil
}

// Split is one unit of scan work: a bounded slice of a single
// topic-partition.
type Split struct {
	Topic     string
	Partition int32
	Range     OffsetRange
}
