package pets

import "context"

// OwnerOf expone el ownerUserID de una mascota.
// El handler de object storage lo usa para autorizar subidas.
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}
