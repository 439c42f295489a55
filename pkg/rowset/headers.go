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

import "github.com/novatechflow/kafquery/pkg/consumer"

// aggregateHeaders groups a message's header list by key. Values under
// one key keep their original order; an empty header list produces an
// empty, non-null map.
func aggregateHeaders(headers []consumer.Header) Value {
	grouped := make(map[string][][]byte, len(headers))
	for _, h := range headers {
		grouped[h.Key] = append(grouped[h.Key], h.Value)
	}
	return HeaderMapValue(grouped)
}
