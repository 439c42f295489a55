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

// RowDecoder turns a raw payload into values for the decoded (non
// internal) columns it was configured with. A false second return means
// the payload could not be decoded; the reader flags the row as corrupt
// and keeps going. Decoders never abort a read.
type RowDecoder interface {
	Decode(data []byte) (map[*Column]Value, bool)
}
