package errcodes

// Business rule violations raised by the catalog and loan services. Each call
// returns a fresh value; compare with errors.Is.

func BookUnavailable() error {
	return BusinessRule("book_unavailable", "There are no available copies of this book.")
}

func InsufficientInventory() error {
	return BusinessRule("insufficient_inventory", "The returned copy has already been checked out again, so the return can't be undone.")
}

func InvalidReturnDate() error {
	return BusinessRule("invalid_return_date", "The return date must be after the issue date.")
}

func DuplicateActiveLoan() error {
	return BusinessRule("duplicate_active_loan", "This reader already has an active loan of this book.")
}

func DuplicateTicket() error {
	return BusinessRule("duplicate_ticket", "This reader already has a ticket.")
}

func DuplicateReader() error {
	return BusinessRule("duplicate_reader", "A reader with this email already exists.")
}

func DuplicateBook() error {
	return BusinessRule("duplicate_book", "This author already has a book with this name.")
}

func DuplicateAuthor() error {
	return BusinessRule("duplicate_author", "An author with this name already exists.")
}
