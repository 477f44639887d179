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

// Package selection chooses exam tasks for a topic without repeating a
// skeleton.
//
// A Selector derives a difficulty band from the student's target score,
// runs hybrid searches restricted to the topic and band, and rejects every
// candidate whose skeleton fingerprint is already recorded in the run's
// UsedFingerprints set. When the search engine is unavailable it falls back
// to a topic substring scan over stored tasks with synthetic scores.
package selection
