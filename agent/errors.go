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


package agent

import "errors"

var (
	// ErrResourcesRequired indicates a Graph was created without Resources.
	ErrResourcesRequired = errors.New("resources required")

	// ErrFactoryRequired indicates a resource was requested with no factory configured.
	ErrFactoryRequired = errors.New("resource factory not configured")

	// ErrUnknownRoute indicates a route value outside the closed enumeration reached dispatch.
	ErrUnknownRoute = errors.New("unknown route")
)
