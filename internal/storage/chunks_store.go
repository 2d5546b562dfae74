package storage

import "database/sql"

// GetChunks returns every chunk belonging to documentID, ordered by
// chunk_order.
func (s *Store) GetChunks(documentID int64) ([]Chunk, error) {
	rows, err := s.db.Query(`
		SELECT id, document_id, heading, heading_level, content, chunk_order, char_offset, is_priority_heading
		FROM chunks WHERE document_id = ? ORDER BY chunk_order`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var heading sql.NullString
		var priority int
		if err := rows.Scan(&c.ID, &c.DocumentID, &heading, &c.HeadingLevel, &c.Content, &c.ChunkOrder, &c.CharOffset, &priority); err != nil {
			return nil, err
		}
		c.Heading = heading.String
		c.IsPriorityHeading = priority != 0
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
