// Package testutil provides testing utilities shared by the podbrief packages.
//
// Database Test Helpers (db_helpers.go):
//   - SetupTestStore: a migrated SQLite store in a temp dir, or PostgreSQL
//     when POSTGRES_TEST_URL is set
//   - SeedUser / SeedAudioFile: rows with sensible defaults
//
// Mocks (mock_transcriber.go, mock_services.go):
//   - MockTranscriber and MockSummarizer: scripted engines with call tracking
//   - RecordingNotifier: captures low-balance notifications
//   - MemoryBlobStore: an in-memory blob.Store
//
// Fixtures (fixtures.go):
//   - MP3Frames: a decodable silent MP3 of a given frame count
//   - sample transcripts and summary replies
//
// # Usage
//
//	func TestPipeline(t *testing.T) {
//	    store := testutil.SetupTestStore(t)
//	    user := testutil.SeedUser(t, store, "50.00")
//	    transcriber := testutil.NewMockTranscriber().WithText("hello")
//	    ...
//	}
//
// All mocks are safe for concurrent use.
package testutil
