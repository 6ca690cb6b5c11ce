package seeds

func SeedAll() error {
	if err := SeedCrops(); err != nil {
		return err
	}
	if err := SeedAnimalTypes(); err != nil {
		return err
	}
	return nil
}
