package pets

import "context"

// OwnerOf expone el ownerUserID de una mascota.
// Se usa para evitar ciclos de imports entre módulos (visits depende de esto
// vía una interface angosta, sin importar pets desde su service).
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}
