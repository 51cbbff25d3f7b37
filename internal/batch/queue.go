package batch

// BuildQueue assigns poses to count slots round-robin, starting at the first
// pose.
func BuildQueue(poseIDs []string, count int) []string {
	if count <= 0 || len(poseIDs) == 0 {
		return nil
	}
	queue := make([]string, count)
	for i := range queue {
		queue[i] = poseIDs[i%len(poseIDs)]
	}
	return queue
}
