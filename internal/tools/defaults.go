package tools

// RegisterDefaults registers the companion's full minimum toolset onto r:
// craft_item, smelt_items, get_recipe, chop_trees, mine_ores, gather_blocks,
// farm_area, strip_mine, transfer_items, interact_container,
// find_and_fetch_item, task_status, get_inventory, scan_surroundings,
// memory, emote.
func RegisterDefaults(r *Registry) {
	registerCraftTools(r)
	registerGatherTools(r)
	registerLogisticsTools(r)
	registerStatusTools(r)
	registerSocialTools(r)
}
