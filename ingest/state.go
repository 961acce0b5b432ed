// Copyright 2025 Poiesic Systems
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


package ingest

// Stage identifies a step in the ingestion pipeline. Stages are transient:
// only the terminal document status is persisted, but each transition is
// logged so a failed ingestion can be traced to the step that broke.
type Stage int

const (
	StageUploaded Stage = iota + 1
	StageExtracting
	StageSanitizing
	StageRedacting
	StageSchemaDiscovery
	StagePersisting
	StageEmbedding
	StageError
)

// String returns the log representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageUploaded:
		return "UPLOADED"
	case StageExtracting:
		return "EXTRACTING"
	case StageSanitizing:
		return "SANITIZING"
	case StageRedacting:
		return "REDACTING"
	case StageSchemaDiscovery:
		return "SCHEMA_DISCOVERY"
	case StagePersisting:
		return "PERSISTING"
	case StageEmbedding:
		return "EMBEDDING"
	case StageError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
